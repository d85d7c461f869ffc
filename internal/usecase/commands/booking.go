package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fleetrent/internal/domain/booking"
	"fleetrent/internal/domain/item"
	"fleetrent/internal/infra"
	"fleetrent/internal/pkg/errs"
	"fleetrent/internal/usecase/queries"
	"fleetrent/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound   = errs.New("booking not found")
	ErrItemNotFound      = errs.New("item not found")
	ErrItemArchived      = errs.New("item is archived")
	ErrBookingConflict   = errs.New("booking conflict")
	ErrInvalidTransition = errs.New("invalid booking status transition")
	ErrIntervalLocked    = errs.New("booking dates can no longer be edited")

	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// ConflictError carries the overlapping bookings so callers can show the
// user what is actually in the way. errors.Is(err, ErrBookingConflict)
// holds for it.
type ConflictError struct {
	Conflicts []*queries.BookingConflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking conflict: %d overlapping booking(s)", len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error {
	return ErrBookingConflict
}

// TransitionError reports the current and attempted-target states.
// errors.Is(err, ErrInvalidTransition) holds for it.
type TransitionError struct {
	From booking.Status
	To   booking.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type CreateBookingInput struct {
	ItemID     uuid.UUID
	CustomerID *uuid.UUID
	StartAt    time.Time
	EndAt      time.Time
	Note       string
	Confirm    bool
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, tenantID uuid.UUID, input CreateBookingInput) (*queries.BookingView, error)
	EditBookingDates(ctx context.Context, tenantID, bookingID uuid.UUID, startAt, endAt time.Time) (*queries.BookingView, error)
	ConfirmBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*queries.BookingView, error)
	StartBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*queries.BookingView, error)
	CompleteBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*queries.BookingView, error)
	CancelBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*queries.BookingView, error)
}

type bookingCommandsImpl struct {
	uow       shared.UnitOfWork
	bookings  shared.BookingRepository
	items     shared.ItemRepository
	readStore queries.BookingReadStore
}

func NewBookingCommands(uow shared.UnitOfWork, bookings shared.BookingRepository, items shared.ItemRepository, readStore queries.BookingReadStore) BookingCommands {
	return &bookingCommandsImpl{
		uow:       uow,
		bookings:  bookings,
		items:     items,
		readStore: readStore,
	}
}

// CreateBooking checks availability and inserts within one transaction. The
// item row is locked first so two concurrent creates for the same item
// serialize; the exclusion constraint on the table backstops anything the
// in-transaction check could still miss.
func (c *bookingCommandsImpl) CreateBooking(ctx context.Context, tenantID uuid.UUID, input CreateBookingInput) (*queries.BookingView, error) {
	iv, err := booking.NewInterval(input.StartAt, input.EndAt)
	if err != nil {
		return nil, err
	}

	status := booking.StatusPending
	if input.Confirm {
		status = booking.StatusConfirmed
	}

	entity, err := booking.NewBooking(tenantID, input.ItemID, input.CustomerID, iv, status, input.Note)
	if err != nil {
		return nil, err
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		it, findErr := tx.Items().FindByIDForUpdate(ctx, tx.DB(), tenantID, input.ItemID)
		if findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrItemNotFound
			}
			return errs.Mark(findErr, ErrDatabaseOperationFailed)
		}
		if it.IsArchived() {
			return ErrItemArchived
		}

		overlapping, findErr := tx.Bookings().FindOverlapping(ctx, tx.DB(), tenantID, input.ItemID, iv, nil)
		if findErr != nil {
			return errs.Mark(findErr, ErrDatabaseOperationFailed)
		}
		if len(overlapping) > 0 {
			return &ConflictError{Conflicts: queries.ConflictsFromEntities(overlapping)}
		}

		if _, createErr := tx.Bookings().Create(ctx, tx.DB(), entity); createErr != nil {
			if infra.IsKind(createErr, infra.KindConflict) {
				// Exclusion constraint fired: a competing insert won the
				// race despite the row lock. Surface it as a conflict.
				return &ConflictError{}
			}
			return errs.Mark(createErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, c.withConstraintConflicts(ctx, err, tenantID, input.ItemID, iv, nil)
	}

	return c.viewAfterWrite(ctx, tenantID, entity.ID())
}

// EditBookingDates re-runs the availability check excluding the booking's
// own id, inside the same transaction as the update.
func (c *bookingCommandsImpl) EditBookingDates(ctx context.Context, tenantID, bookingID uuid.UUID, startAt, endAt time.Time) (*queries.BookingView, error) {
	iv, err := booking.NewInterval(startAt, endAt)
	if err != nil {
		return nil, err
	}

	var itemID uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, findErr := tx.Bookings().FindByID(ctx, tx.DB(), tenantID, bookingID)
		if findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(findErr, ErrDatabaseOperationFailed)
		}
		itemID = entity.ItemID()

		// Lock the item row so the edit serializes against creates.
		if _, lockErr := tx.Items().FindByIDForUpdate(ctx, tx.DB(), tenantID, entity.ItemID()); lockErr != nil {
			return errs.Mark(lockErr, ErrDatabaseOperationFailed)
		}

		if reschedErr := entity.Reschedule(iv); reschedErr != nil {
			if errors.Is(reschedErr, booking.ErrIntervalLocked) {
				return ErrIntervalLocked
			}
			return reschedErr
		}

		excludeID := entity.ID()
		overlapping, findErr := tx.Bookings().FindOverlapping(ctx, tx.DB(), tenantID, entity.ItemID(), iv, &excludeID)
		if findErr != nil {
			return errs.Mark(findErr, ErrDatabaseOperationFailed)
		}
		if len(overlapping) > 0 {
			return &ConflictError{Conflicts: queries.ConflictsFromEntities(overlapping)}
		}

		if updateErr := tx.Bookings().Update(ctx, tx.DB(), entity); updateErr != nil {
			if infra.IsKind(updateErr, infra.KindConflict) {
				return &ConflictError{}
			}
			return errs.Mark(updateErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, c.withConstraintConflicts(ctx, err, tenantID, itemID, iv, &bookingID)
	}

	return c.viewAfterWrite(ctx, tenantID, bookingID)
}

func (c *bookingCommandsImpl) ConfirmBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*queries.BookingView, error) {
	return c.transition(ctx, tenantID, bookingID, booking.StatusConfirmed)
}

// StartBooking marks the physical handover. The interval's start having
// arrived is deliberately not enforced; early handover is a business call.
func (c *bookingCommandsImpl) StartBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*queries.BookingView, error) {
	return c.transition(ctx, tenantID, bookingID, booking.StatusInProgress)
}

func (c *bookingCommandsImpl) CompleteBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*queries.BookingView, error) {
	return c.transition(ctx, tenantID, bookingID, booking.StatusCompleted)
}

func (c *bookingCommandsImpl) CancelBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*queries.BookingView, error) {
	return c.transition(ctx, tenantID, bookingID, booking.StatusCancelled)
}

func (c *bookingCommandsImpl) transition(ctx context.Context, tenantID, bookingID uuid.UUID, target booking.Status) (*queries.BookingView, error) {
	var (
		itemID     uuid.UUID
		fromStatus booking.Status
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, findErr := tx.Bookings().FindByID(ctx, tx.DB(), tenantID, bookingID)
		if findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(findErr, ErrDatabaseOperationFailed)
		}

		itemID = entity.ItemID()
		fromStatus = entity.Status()

		if transErr := entity.TransitionTo(target); transErr != nil {
			return &TransitionError{From: fromStatus, To: target}
		}

		if updateErr := tx.Bookings().Update(ctx, tx.DB(), entity); updateErr != nil {
			return errs.Mark(updateErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.applyCachedStatusSideEffect(ctx, tenantID, itemID, fromStatus, target)

	return c.viewAfterWrite(ctx, tenantID, bookingID)
}

// The item's cached status is a display signal, updated best-effort after
// the booking transition has committed. A failure here leaves the cache
// stale but never the booking state.
func (c *bookingCommandsImpl) applyCachedStatusSideEffect(ctx context.Context, tenantID, itemID uuid.UUID, from, to booking.Status) {
	var newStatus item.CachedStatus
	switch {
	case to == booking.StatusInProgress:
		newStatus = item.StatusRented
	case to == booking.StatusCompleted:
		newStatus = item.StatusAvailable
	case to == booking.StatusCancelled && from == booking.StatusInProgress:
		newStatus = item.StatusAvailable
	default:
		return
	}

	err := c.uow.WithDB(ctx, func(ctx context.Context, db shared.DBTX) error {
		return c.items.UpdateCachedStatus(ctx, db, tenantID, itemID, newStatus)
	})
	if err != nil {
		slog.Warn("failed to update item cached status",
			"tenant_id", tenantID,
			"item_id", itemID,
			"status", newStatus.String(),
			"error", err.Error())
	}
}

// withConstraintConflicts fills in the conflict set when the exclusion
// constraint rejected a write. The constraint aborts the transaction before
// the overlapping rows can be read, so the loser of a race refetches them
// afterwards and gets the same payload as the fast-path check.
func (c *bookingCommandsImpl) withConstraintConflicts(ctx context.Context, err error, tenantID, itemID uuid.UUID, iv booking.Interval, excludeID *uuid.UUID) error {
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) || len(conflictErr.Conflicts) > 0 {
		return err
	}

	dbErr := c.uow.WithDB(ctx, func(ctx context.Context, db shared.DBTX) error {
		overlapping, findErr := c.bookings.FindOverlapping(ctx, db, tenantID, itemID, iv, excludeID)
		if findErr != nil {
			return findErr
		}
		conflictErr.Conflicts = queries.ConflictsFromEntities(overlapping)
		return nil
	})
	if dbErr != nil {
		// The conflict itself still stands; only the diagnostic payload
		// is degraded.
		slog.Warn("failed to load conflict set after constraint violation",
			"tenant_id", tenantID,
			"item_id", itemID,
			"error", dbErr.Error())
	}
	return conflictErr
}

func (c *bookingCommandsImpl) viewAfterWrite(ctx context.Context, tenantID, bookingID uuid.UUID) (*queries.BookingView, error) {
	view, err := c.readStore.FindByID(ctx, tenantID, bookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}
