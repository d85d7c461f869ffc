package repository

import (
	"context"
	"time"

	"fleetrent/internal/domain/booking"
	"fleetrent/internal/infra"
	"fleetrent/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

const createBookingSQL = `
INSERT INTO bookings (id, tenant_id, item_id, customer_id, start_at, end_at, status, note)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

func (r *BookingRepository) Create(ctx context.Context, db shared.DBTX, b *booking.Booking) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, createBookingSQL,
		b.ID(), b.TenantID(), b.ItemID(), b.CustomerID(),
		b.Interval().Start(), b.Interval().End(), b.Status().String(), b.Note(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create booking", err)
	}
	return id, nil
}

const findBookingByIDSQL = `
SELECT id, tenant_id, item_id, customer_id, start_at, end_at, status, note, created_at, updated_at
FROM bookings
WHERE tenant_id = $1 AND id = $2`

func (r *BookingRepository) FindByID(ctx context.Context, db shared.DBTX, tenantID, id uuid.UUID) (*booking.Booking, error) {
	row := db.QueryRow(ctx, findBookingByIDSQL, tenantID, id)
	b, err := scanBooking(row)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, err
	}
	return b, nil
}

// The status filter and the half-open comparison live in this one query;
// no other overlap SQL exists in the codebase.
const findOverlappingSQL = `
SELECT id, tenant_id, item_id, customer_id, start_at, end_at, status, note, created_at, updated_at
FROM bookings
WHERE tenant_id = $1
  AND item_id = $2
  AND status IN ('pending', 'confirmed', 'in_progress')
  AND start_at < $3
  AND end_at > $4
  AND ($5::uuid IS NULL OR id <> $5)
ORDER BY start_at`

func (r *BookingRepository) FindOverlapping(
	ctx context.Context,
	db shared.DBTX,
	tenantID, itemID uuid.UUID,
	iv booking.Interval,
	excludeID *uuid.UUID,
) ([]*booking.Booking, error) {
	rows, err := db.Query(ctx, findOverlappingSQL, tenantID, itemID, iv.End(), iv.Start(), excludeID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query overlapping bookings", err)
	}
	defer rows.Close()

	var result []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read overlapping bookings", err)
	}
	return result, nil
}

const updateBookingSQL = `
UPDATE bookings
SET start_at = $3, end_at = $4, status = $5, note = $6, updated_at = now()
WHERE tenant_id = $1 AND id = $2`

func (r *BookingRepository) Update(ctx context.Context, db shared.DBTX, b *booking.Booking) error {
	tag, err := db.Exec(ctx, updateBookingSQL,
		b.TenantID(), b.ID(),
		b.Interval().Start(), b.Interval().End(), b.Status().String(), b.Note(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*booking.Booking, error) {
	var (
		id, tenantID, itemID uuid.UUID
		customerID           *uuid.UUID
		startAt, endAt       time.Time
		status               string
		note                 *string
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &tenantID, &itemID, &customerID, &startAt, &endAt, &status, &note, &createdAt, &updatedAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan booking row", err)
	}

	iv, err := booking.NewInterval(startAt, endAt)
	if err != nil {
		return nil, infra.WrapRepoErr("stored booking has invalid interval", err)
	}

	noteVal := ""
	if note != nil {
		noteVal = *note
	}
	return booking.Reconstruct(id, tenantID, itemID, customerID, iv, booking.Status(status), noteVal, createdAt, updatedAt), nil
}
