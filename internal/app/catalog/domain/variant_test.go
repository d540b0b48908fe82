package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/commerce-kernel/internal/app/catalog/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestVariant(t *testing.T) *domain.Variant {
	t.Helper()
	v, err := domain.NewVariant("v-1", "corr-1", "SKU-1", "Tee", decimal.NewFromInt(25), "tester", testNow)
	require.NoError(t, err)
	return v
}

func TestNewVariantStartsDraftAtVersionZero(t *testing.T) {
	v := newTestVariant(t)

	assert.Equal(t, int64(0), v.Version())
	assert.Equal(t, domain.StatusDraft, v.State().Status)

	events := v.UncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventVariantCreated, events[0].EventType)
	assert.Equal(t, int64(0), events[0].Version)

	p, err := kernel.UnmarshalPayload[domain.VariantState](events[0].Payload)
	require.NoError(t, err)
	assert.Nil(t, p.Prior)
	assert.Equal(t, "SKU-1", p.New.SKU)
}

func TestNewVariantValidation(t *testing.T) {
	_, err := domain.NewVariant("v-1", "c", "  ", "Tee", decimal.NewFromInt(25), "tester", testNow)
	assert.ErrorIs(t, err, domain.ErrEmptySKU)

	_, err = domain.NewVariant("v-1", "c", "SKU-1", "", decimal.NewFromInt(25), "tester", testNow)
	assert.ErrorIs(t, err, domain.ErrEmptyName)

	_, err = domain.NewVariant("v-1", "c", "SKU-1", "Tee", decimal.Zero, "tester", testNow)
	assert.ErrorIs(t, err, domain.ErrNonPositivePrice)
}

func TestPublishLifecycle(t *testing.T) {
	v := newTestVariant(t)

	require.NoError(t, v.Publish("tester", testNow))
	assert.Equal(t, domain.StatusActive, v.State().Status)
	assert.Equal(t, int64(1), v.Version())

	assert.ErrorIs(t, v.Publish("tester", testNow), domain.ErrAlreadyPublished)

	require.NoError(t, v.Unpublish("tester", testNow))
	assert.Equal(t, domain.StatusDraft, v.State().Status)
	assert.ErrorIs(t, v.Unpublish("tester", testNow), domain.ErrNotPublished)
}

func TestPublishArchivedIsRejected(t *testing.T) {
	v := newTestVariant(t)
	require.NoError(t, v.Archive("tester", testNow))

	err := v.Publish("tester", testNow)
	require.Error(t, err)
	assert.Equal(t, "Cannot publish an archived variant", err.Error())
}

func TestArchiveClearsDropReference(t *testing.T) {
	v := newTestVariant(t)
	require.NoError(t, v.ScheduleDrop("s-1", "tester", testNow))
	require.NotNil(t, v.State().DropScheduleID)

	require.NoError(t, v.Archive("tester", testNow))
	assert.Equal(t, domain.StatusArchived, v.State().Status)
	assert.Nil(t, v.State().DropScheduleID)
	require.NotNil(t, v.State().ArchivedAt)

	assert.ErrorIs(t, v.Archive("tester", testNow), domain.ErrAlreadyArchived)
}

func TestChangePrice(t *testing.T) {
	v := newTestVariant(t)

	require.NoError(t, v.ChangePrice(decimal.NewFromFloat(19.99), "tester", testNow))
	assert.True(t, v.State().Price.Equal(decimal.NewFromFloat(19.99)))

	assert.ErrorIs(t, v.ChangePrice(decimal.NewFromInt(-1), "tester", testNow), domain.ErrNonPositivePrice)

	require.NoError(t, v.Archive("tester", testNow))
	assert.ErrorIs(t, v.ChangePrice(decimal.NewFromInt(30), "tester", testNow), domain.ErrVariantArchived)
}

func TestOnlyOneDropAtATime(t *testing.T) {
	v := newTestVariant(t)

	require.NoError(t, v.ScheduleDrop("s-1", "tester", testNow))
	err := v.ScheduleDrop("s-2", "tester", testNow)
	require.Error(t, err)
	assert.Equal(t, "A drop is already scheduled. Cancel it first.", err.Error())

	require.NoError(t, v.CancelDrop("tester", testNow))
	assert.Nil(t, v.State().DropScheduleID)
	assert.ErrorIs(t, v.CancelDrop("tester", testNow), domain.ErrNoDropScheduled)

	require.NoError(t, v.ScheduleDrop("s-2", "tester", testNow))
}

func TestVariantSnapshotRoundTrip(t *testing.T) {
	v := newTestVariant(t)
	require.NoError(t, v.Publish("tester", testNow))
	require.NoError(t, v.ChangePrice(decimal.NewFromFloat(31.50), "tester", testNow))

	snap, err := v.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Version)

	loaded, err := domain.LoadVariant(snap)
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version())
	assert.Equal(t, domain.StatusActive, loaded.State().Status)
	assert.True(t, loaded.State().Price.Equal(decimal.NewFromFloat(31.50)))
	assert.Empty(t, loaded.UncommittedEvents())
}

func TestEachTransitionBumpsVersionByOne(t *testing.T) {
	v := newTestVariant(t)
	require.NoError(t, v.Publish("tester", testNow))
	require.NoError(t, v.ChangePrice(decimal.NewFromInt(30), "tester", testNow))
	require.NoError(t, v.Unpublish("tester", testNow))

	events := v.UncommittedEvents()
	require.Len(t, events, 4)
	for i, ev := range events {
		assert.Equal(t, int64(i), ev.Version)
	}
	assert.Equal(t, int64(3), v.Version())
}
