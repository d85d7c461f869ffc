package booking

import (
	"time"

	"fleetrent/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus     = errs.New("invalid booking status")
	ErrInvalidTransition = errs.New("invalid booking status transition")
	ErrIntervalLocked    = errs.New("booking interval can no longer be edited")
)

// Booking reserves one item for a half-open interval. The item reference is
// the single authoritative edge; there is no secondary join table.
type Booking struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	itemID     uuid.UUID
	customerID *uuid.UUID
	interval   Interval
	status     Status
	note       string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewBooking creates a booking in pending or confirmed state. Availability
// is not checked here; that is the lifecycle manager's job, inside the same
// transaction as the insert.
func NewBooking(tenantID, itemID uuid.UUID, customerID *uuid.UUID, interval Interval, status Status, note string) (*Booking, error) {
	if interval.IsZero() {
		return nil, ErrInvalidInterval
	}
	if status != StatusPending && status != StatusConfirmed {
		return nil, ErrInvalidStatus
	}

	return &Booking{
		id:         uuid.New(),
		tenantID:   tenantID,
		itemID:     itemID,
		customerID: customerID,
		interval:   interval,
		status:     status,
		note:       note,
	}, nil
}

func Reconstruct(
	id, tenantID, itemID uuid.UUID,
	customerID *uuid.UUID,
	interval Interval,
	status Status,
	note string,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		tenantID:   tenantID,
		itemID:     itemID,
		customerID: customerID,
		interval:   interval,
		status:     status,
		note:       note,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// TransitionTo validates the move against the state machine. It returns
// ErrInvalidTransition for anything the lifecycle table forbids.
func (b *Booking) TransitionTo(target Status) error {
	if !target.IsValid() {
		return ErrInvalidStatus
	}
	if !b.status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	b.status = target
	return nil
}

// Reschedule replaces the interval. Only pending and confirmed bookings may
// be rescheduled; the caller must re-run the availability check excluding
// this booking's own id before persisting.
func (b *Booking) Reschedule(newInterval Interval) error {
	if newInterval.IsZero() {
		return ErrInvalidInterval
	}
	if !b.status.AllowsDateEdit() {
		return ErrIntervalLocked
	}
	b.interval = newInterval
	return nil
}

func (b *Booking) ID() uuid.UUID          { return b.id }
func (b *Booking) TenantID() uuid.UUID    { return b.tenantID }
func (b *Booking) ItemID() uuid.UUID      { return b.itemID }
func (b *Booking) CustomerID() *uuid.UUID { return b.customerID }
func (b *Booking) Interval() Interval     { return b.interval }
func (b *Booking) Status() Status         { return b.status }
func (b *Booking) Note() string           { return b.note }
func (b *Booking) CreatedAt() time.Time   { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time   { return b.updatedAt }
