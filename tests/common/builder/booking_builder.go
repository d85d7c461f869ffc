//go:build unit || e2e

package builder

import (
	"time"

	dombooking "fleetrent/internal/domain/booking"
	"fleetrent/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	ItemID     uuid.UUID
	ItemName   string
	CustomerID *uuid.UUID
	StartAt    time.Time
	EndAt      time.Time
	Status     dombooking.Status
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Now().UTC()
	customerID := uuid.New()
	return &BookingBuilder{
		ID:         uuid.New(),
		TenantID:   uuid.New(),
		ItemID:     uuid.New(),
		ItemName:   "Test Van",
		CustomerID: &customerID,
		StartAt:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC),
		Status:     dombooking.StatusPending,
		Note:       "weekend rental",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) Interval() dombooking.Interval {
	iv, err := dombooking.NewInterval(b.StartAt, b.EndAt)
	if err != nil {
		panic("builder has invalid interval: " + err.Error())
	}
	return iv
}

func (b *BookingBuilder) BuildDomain() (*dombooking.Booking, error) {
	return dombooking.NewBooking(b.TenantID, b.ItemID, b.CustomerID, b.Interval(), b.Status, b.Note)
}

// BuildReconstructed bypasses creation-time validation, so any status can
// be staged for lifecycle tests.
func (b *BookingBuilder) BuildReconstructed() *dombooking.Booking {
	return dombooking.Reconstruct(
		b.ID, b.TenantID, b.ItemID, b.CustomerID,
		b.Interval(), b.Status, b.Note,
		b.CreatedAt, b.UpdatedAt,
	)
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	var note *string
	if b.Note != "" {
		note = &b.Note
	}
	return &queries.BookingView{
		ID:         b.ID,
		ItemID:     b.ItemID,
		ItemName:   b.ItemName,
		CustomerID: b.CustomerID,
		StartAt:    b.StartAt,
		EndAt:      b.EndAt,
		Status:     b.Status.String(),
		Note:       note,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func (b *BookingBuilder) BuildConflict() *queries.BookingConflict {
	return &queries.BookingConflict{
		ID:         b.ID,
		CustomerID: b.CustomerID,
		StartAt:    b.StartAt,
		EndAt:      b.EndAt,
		Status:     b.Status.String(),
	}
}

// BuildCreateRequestMap produces the JSON body for POST /bookings as a
// mutable map so tests can drop or override single fields.
func (b *BookingBuilder) BuildCreateRequestMap() map[string]any {
	m := map[string]any{
		"item_id":  b.ItemID.String(),
		"start_at": b.StartAt.Format(time.RFC3339),
		"end_at":   b.EndAt.Format(time.RFC3339),
	}
	if b.CustomerID != nil {
		m["customer_id"] = b.CustomerID.String()
	}
	if b.Note != "" {
		m["note"] = b.Note
	}
	return m
}
