package queries

import (
	"context"
	"time"

	"fleetrent/internal/domain/booking"
	"fleetrent/internal/infra"
	"fleetrent/internal/pkg/errs"
	"fleetrent/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrItemNotFound    = errs.New("item not found")
)

type BookingFilter struct {
	ItemID *uuid.UUID
	Status *string
	Limit  int32
	Offset int32
}

// BookingReadStore serves display views; availability never reads from here.
type BookingReadStore interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*BookingView, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter BookingFilter) ([]*BookingListItem, error)
}

type BookingQueries interface {
	// CheckAvailability is the single availability checker in the system.
	// It is a pure read: the write path re-runs the same repository query
	// inside its transaction before inserting.
	CheckAvailability(ctx context.Context, tenantID, itemID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (*AvailabilityResult, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*BookingView, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, filter BookingFilter) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	uow       shared.UnitOfWork
	bookings  shared.BookingRepository
	items     shared.ItemRepository
	readStore BookingReadStore
}

func NewBookingQueries(
	uow shared.UnitOfWork,
	bookings shared.BookingRepository,
	items shared.ItemRepository,
	readStore BookingReadStore,
) BookingQueries {
	return &bookingQueriesImpl{
		uow:       uow,
		bookings:  bookings,
		items:     items,
		readStore: readStore,
	}
}

func (q *bookingQueriesImpl) CheckAvailability(
	ctx context.Context,
	tenantID, itemID uuid.UUID,
	start, end time.Time,
	excludeBookingID *uuid.UUID,
) (*AvailabilityResult, error) {
	// Interval validation happens before any query is issued.
	iv, err := booking.NewInterval(start, end)
	if err != nil {
		return nil, err
	}

	var result *AvailabilityResult
	err = q.uow.WithDB(ctx, func(ctx context.Context, db shared.DBTX) error {
		if _, findErr := q.items.FindByID(ctx, db, tenantID, itemID); findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrItemNotFound
			}
			return errs.Wrap(findErr, "failed to find item")
		}

		overlapping, findErr := q.bookings.FindOverlapping(ctx, db, tenantID, itemID, iv, excludeBookingID)
		if findErr != nil {
			return errs.Wrap(findErr, "failed to query overlapping bookings")
		}

		result = toAvailabilityResult(overlapping)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*BookingView, error) {
	view, err := q.readStore.FindByID(ctx, tenantID, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Wrap(err, "failed to find booking")
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter BookingFilter) ([]*BookingListItem, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	items, err := q.readStore.FindByTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list bookings")
	}
	return items, nil
}

// ToAvailabilityResult collects the full conflict set; callers need every
// overlapping booking for diagnostics, not just the first.
func toAvailabilityResult(overlapping []*booking.Booking) *AvailabilityResult {
	conflicts := make([]*BookingConflict, 0, len(overlapping))
	for _, b := range overlapping {
		conflicts = append(conflicts, &BookingConflict{
			ID:         b.ID(),
			CustomerID: b.CustomerID(),
			StartAt:    b.Interval().Start(),
			EndAt:      b.Interval().End(),
			Status:     b.Status().String(),
		})
	}
	return &AvailabilityResult{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}
}

// ConflictsFromEntities is shared with the write path so conflict payloads
// look the same whether they came from the fast-path check or the in-tx one.
func ConflictsFromEntities(overlapping []*booking.Booking) []*BookingConflict {
	return toAvailabilityResult(overlapping).Conflicts
}
