// Package queries implements the read side over the view tables. Reads
// go straight to the database and may observe state queued but not yet
// flushed by someone else's in-flight Unit of Work; a committed Unit of
// Work is always visible because WithTransaction blocks on the flush.
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/murkotick/commerce-kernel/internal/app/catalog/dto"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/models/m_schedule_view"
	"github.com/murkotick/commerce-kernel/internal/models/m_variant_view"
)

// SqliteReadModel satisfies contracts.ReadModel over the embedded
// database.
type SqliteReadModel struct {
	db *sqlx.DB
}

func NewSqliteReadModel(db *sqlx.DB) *SqliteReadModel {
	return &SqliteReadModel{db: db}
}

func (rm *SqliteReadModel) GetVariant(ctx context.Context, variantID string) (*dto.VariantDTO, error) {
	var row m_variant_view.Row
	err := rm.db.GetContext(ctx, &row, m_variant_view.SelectByIDSQL, variantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kernel.NewNotFound("Variant", variantID)
	}
	if err != nil {
		return nil, fmt.Errorf("get variant view: %w", err)
	}
	return variantDTO(row), nil
}

func (rm *SqliteReadModel) ListVariants(ctx context.Context, status string, limit, offset int) ([]*dto.VariantDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []m_variant_view.Row
	if err := rm.db.SelectContext(ctx, &rows, m_variant_view.SelectByStatusSQL, status, limit, offset); err != nil {
		return nil, fmt.Errorf("list variant view: %w", err)
	}
	out := make([]*dto.VariantDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, variantDTO(row))
	}
	return out, nil
}

func (rm *SqliteReadModel) GetSchedule(ctx context.Context, scheduleID string) (*dto.ScheduleDTO, error) {
	var row m_schedule_view.Row
	err := rm.db.GetContext(ctx, &row, m_schedule_view.SelectByIDSQL, scheduleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kernel.NewNotFound("Schedule", scheduleID)
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule view: %w", err)
	}
	return &dto.ScheduleDTO{
		ScheduleID:          row.ScheduleID,
		TargetAggregateID:   row.TargetAggregateID,
		TargetAggregateType: row.TargetAggregateType,
		CommandType:         row.CommandType,
		CommandData:         row.CommandData,
		ScheduledFor:        row.ScheduledFor,
		Status:              row.Status,
		RetryCount:          row.RetryCount,
		NextRetryAt:         row.NextRetryAt,
		ErrorMessage:        row.ErrorMessage,
		CreatedBy:           row.CreatedBy,
		Version:             row.Version,
		UpdatedAt:           row.UpdatedAt,
	}, nil
}

func variantDTO(row m_variant_view.Row) *dto.VariantDTO {
	return &dto.VariantDTO{
		VariantID:      row.VariantID,
		SKU:            row.SKU,
		Name:           row.Name,
		Price:          row.Price,
		Status:         row.Status,
		DropScheduleID: row.DropScheduleID,
		Version:        row.Version,
		UpdatedAt:      row.UpdatedAt,
	}
}
