package shared

import (
	"context"

	"fleetrent/internal/domain/booking"
	"fleetrent/internal/domain/item"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx, so
// repositories run unchanged inside and outside transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UnitOfWork interface {
	// Within: full transaction for write operations, retried on transient
	// serialization conflicts.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for multi-table consistent reads.
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db DBTX) error) error
	// WithDB: single query operations using implicit transactions.
	WithDB(ctx context.Context, fn func(ctx context.Context, db DBTX) error) error
}

type Tx interface {
	Bookings() BookingRepository
	Items() ItemRepository
	Users() UserRepository
	DB() DBTX
}

// BookingRepository is the write-side port for the bookings table. Every
// call is tenant-scoped; the tenant id is passed through unchanged.
type BookingRepository interface {
	Create(ctx context.Context, db DBTX, b *booking.Booking) (uuid.UUID, error)
	FindByID(ctx context.Context, db DBTX, tenantID, id uuid.UUID) (*booking.Booking, error)
	// FindOverlapping is the one overlap query in the system: blocking
	// statuses only, half-open interval semantics, optional self-exclusion.
	FindOverlapping(ctx context.Context, db DBTX, tenantID, itemID uuid.UUID, iv booking.Interval, excludeID *uuid.UUID) ([]*booking.Booking, error)
	Update(ctx context.Context, db DBTX, b *booking.Booking) error
}

type ItemRepository interface {
	Create(ctx context.Context, db DBTX, it *item.Item) (uuid.UUID, error)
	FindByID(ctx context.Context, db DBTX, tenantID, id uuid.UUID) (*item.Item, error)
	// FindByIDForUpdate locks the item row, serializing concurrent
	// check-then-insert sequences for the same item.
	FindByIDForUpdate(ctx context.Context, db DBTX, tenantID, id uuid.UUID) (*item.Item, error)
	UpdateCachedStatus(ctx context.Context, db DBTX, tenantID, id uuid.UUID, status item.CachedStatus) error
}

type UserRepository interface {
	UpdateLastLogin(ctx context.Context, db DBTX, userID uuid.UUID) error
}
