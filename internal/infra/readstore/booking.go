package readstore

import (
	"context"
	"fmt"
	"time"

	"fleetrent/internal/infra"
	"fleetrent/internal/pkg/pgconv"
	"fleetrent/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingReadStore struct {
	db *pgxpool.Pool
}

func NewBookingReadStore(db *pgxpool.Pool) *BookingReadStore {
	return &BookingReadStore{db: db}
}

const findBookingViewSQL = `
SELECT b.id, b.item_id, i.name, b.customer_id, c.name,
       b.start_at, b.end_at, b.status, b.note, b.created_at, b.updated_at
FROM bookings b
JOIN items i ON i.id = b.item_id
LEFT JOIN customers c ON c.id = b.customer_id
WHERE b.tenant_id = $1 AND b.id = $2`

func (s *BookingReadStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*queries.BookingView, error) {
	var (
		view         queries.BookingView
		customerName *string
		note         *string
	)
	err := s.db.QueryRow(ctx, findBookingViewSQL, tenantID, id).Scan(
		&view.ID, &view.ItemID, &view.ItemName, &view.CustomerID, &customerName,
		&view.StartAt, &view.EndAt, &view.Status, &note, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking view", err)
	}

	view.CustomerName = customerName
	view.Note = note
	return &view, nil
}

const listBookingsSQL = `
SELECT b.id, b.item_id, i.name, b.start_at, b.end_at, b.status, b.created_at
FROM bookings b
JOIN items i ON i.id = b.item_id
WHERE b.tenant_id = $1`

func (s *BookingReadStore) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter queries.BookingFilter) ([]*queries.BookingListItem, error) {
	sql := listBookingsSQL
	args := []any{tenantID}

	if filter.ItemID != nil {
		args = append(args, *filter.ItemID)
		sql += fmt.Sprintf(" AND b.item_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		sql += fmt.Sprintf(" AND b.status = $%d", len(args))
	}

	args = append(args, filter.Limit)
	sql += fmt.Sprintf(" ORDER BY b.start_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	sql += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var result []*queries.BookingListItem
	for rows.Next() {
		var (
			item    queries.BookingListItem
			startAt time.Time
			endAt   time.Time
		)
		if scanErr := rows.Scan(&item.ID, &item.ItemID, &item.ItemName, &startAt, &endAt, &item.Status, &item.CreatedAt); scanErr != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list row", scanErr)
		}
		item.StartAt = startAt
		item.EndAt = endAt
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read booking list", err)
	}
	return result, nil
}
