package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/murkotick/commerce-kernel/internal/kernel"
)

// AggregateType identifies schedule rows in the event and snapshot stores.
const AggregateType = "schedule"

// Event types emitted by the Schedule aggregate.
const (
	EventScheduleCreated   = "schedule.created"
	EventScheduleUpdated   = "schedule.updated"
	EventScheduleCancelled = "schedule.cancelled"
	EventScheduleExecuted  = "schedule.executed"
	EventScheduleFailed    = "schedule.failed"
)

// DefaultMaxRetries bounds retry attempts before a schedule is parked.
const DefaultMaxRetries = 5

// Status is the lifecycle state of a schedule.
type Status string

const (
	StatusPending   Status = "pending"
	StatusExecuted  Status = "executed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// ScheduleState is the full state carried by snapshots and event payloads.
type ScheduleState struct {
	ScheduleID          string          `json:"scheduleId"`
	TargetAggregateID   string          `json:"targetAggregateId"`
	TargetAggregateType string          `json:"targetAggregateType"`
	CommandType         string          `json:"commandType"`
	CommandData         json.RawMessage `json:"commandData,omitempty"`
	ScheduledFor        time.Time       `json:"scheduledFor"`
	Status              Status          `json:"status"`
	RetryCount          int             `json:"retryCount"`
	NextRetryAt         *time.Time      `json:"nextRetryAt,omitempty"`
	CreatedBy           string          `json:"createdBy"`
	ErrorMessage        string          `json:"errorMessage,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Schedule is a durable deferred command: it waits until its target time,
// is executed by the poller, and retries with exponential backoff until
// it succeeds or exhausts its attempts.
type Schedule struct {
	kernel.Root
	state ScheduleState
}

// NewScheduleParams carries the inputs for creating a schedule.
type NewScheduleParams struct {
	ScheduleID          string
	CorrelationID       string
	TargetAggregateID   string
	TargetAggregateType string
	CommandType         string
	CommandData         json.RawMessage
	ScheduledFor        time.Time
	CreatedBy           string
}

// NewSchedule creates a pending schedule and records its creation event
// at version 0.
func NewSchedule(p NewScheduleParams, now time.Time) (*Schedule, error) {
	if p.CommandType == "" {
		return nil, ErrEmptyCommandType
	}
	if p.TargetAggregateID == "" || p.TargetAggregateType == "" {
		return nil, ErrEmptyTarget
	}
	if p.ScheduledFor.IsZero() {
		return nil, ErrZeroScheduledFor
	}

	s := &Schedule{
		Root: kernel.NewRoot(AggregateType, p.ScheduleID, p.CorrelationID),
		state: ScheduleState{
			ScheduleID:          p.ScheduleID,
			TargetAggregateID:   p.TargetAggregateID,
			TargetAggregateType: p.TargetAggregateType,
			CommandType:         p.CommandType,
			CommandData:         p.CommandData,
			ScheduledFor:        p.ScheduledFor.UTC(),
			Status:              StatusPending,
			CreatedBy:           p.CreatedBy,
			CreatedAt:           now.UTC(),
			UpdatedAt:           now.UTC(),
		},
	}
	if err := s.emit(EventScheduleCreated, nil, p.CreatedBy, now); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadSchedule reconstructs a schedule from its snapshot without touching
// the event list.
func LoadSchedule(snap *kernel.Snapshot) (*Schedule, error) {
	state, err := kernel.State[ScheduleState](snap)
	if err != nil {
		return nil, err
	}
	return &Schedule{Root: kernel.LoadRoot(snap), state: state}, nil
}

// State returns a copy of the full schedule state.
func (s *Schedule) State() ScheduleState { return s.state }

// Snapshot implements kernel.Aggregate.
func (s *Schedule) Snapshot() (*kernel.Snapshot, error) {
	return s.MakeSnapshot(s.state)
}

// Update changes the execution time and command data. Legal only while
// the schedule is still pending.
func (s *Schedule) Update(scheduledFor time.Time, commandData json.RawMessage, actor string, now time.Time) error {
	if s.state.Status != StatusPending {
		return fmt.Errorf("Cannot update a schedule in status %s", s.state.Status)
	}
	prior := s.state
	s.state.ScheduledFor = scheduledFor.UTC()
	s.state.CommandData = commandData
	s.Bump()
	return s.emit(EventScheduleUpdated, &prior, actor, now)
}

// Cancel aborts a schedule. Legal from pending and failed.
func (s *Schedule) Cancel(actor string, now time.Time) error {
	switch s.state.Status {
	case StatusExecuted:
		return ErrAlreadyExecuted
	case StatusCancelled:
		return ErrAlreadyCancelled
	}
	prior := s.state
	s.state.Status = StatusCancelled
	s.state.NextRetryAt = nil
	s.Bump()
	return s.emit(EventScheduleCancelled, &prior, actor, now)
}

// MarkExecuted records a successful execution. Legal only from pending.
func (s *Schedule) MarkExecuted(actor string, now time.Time) error {
	if s.state.Status != StatusPending {
		return fmt.Errorf("Cannot execute a schedule in status %s", s.state.Status)
	}
	prior := s.state
	s.state.Status = StatusExecuted
	s.state.NextRetryAt = nil
	s.state.ErrorMessage = ""
	s.Bump()
	return s.emit(EventScheduleExecuted, &prior, actor, now)
}

// MarkFailed records a failed attempt. While attempts remain the status
// stays pending and the next retry is scheduled at now + 2^retryCount
// minutes; once maxRetries is reached the schedule is parked as failed.
func (s *Schedule) MarkFailed(message string, maxRetries int, actor string, now time.Time) error {
	if s.state.Status != StatusPending {
		return fmt.Errorf("Cannot fail a schedule in status %s", s.state.Status)
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	prior := s.state
	s.state.RetryCount++
	s.state.ErrorMessage = message
	if s.state.RetryCount < maxRetries {
		next := now.UTC().Add(time.Duration(1<<s.state.RetryCount) * time.Minute)
		s.state.NextRetryAt = &next
	} else {
		s.state.Status = StatusFailed
		s.state.NextRetryAt = nil
	}
	s.Bump()
	return s.emit(EventScheduleFailed, &prior, actor, now)
}

func (s *Schedule) emit(eventType string, prior *ScheduleState, actor string, now time.Time) error {
	s.state.UpdatedAt = now.UTC()
	payload, err := kernel.MarshalPayload(prior, s.state)
	if err != nil {
		return err
	}
	s.Record(eventType, payload, actor, now)
	return nil
}

var _ kernel.Aggregate = (*Schedule)(nil)
