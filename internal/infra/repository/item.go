package repository

import (
	"context"
	"time"

	"fleetrent/internal/domain/item"
	"fleetrent/internal/infra"
	"fleetrent/internal/pkg/pgconv"
	"fleetrent/internal/usecase/shared"

	"github.com/google/uuid"
)

type ItemRepository struct{}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

const createItemSQL = `
INSERT INTO items (id, tenant_id, name, cached_status)
VALUES ($1, $2, $3, $4)
RETURNING id`

func (r *ItemRepository) Create(ctx context.Context, db shared.DBTX, it *item.Item) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, createItemSQL, it.ID(), it.TenantID(), it.Name(), it.CachedStatus().String()).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create item", err)
	}
	return id, nil
}

const findItemByIDSQL = `
SELECT id, tenant_id, name, cached_status, created_at, updated_at
FROM items
WHERE tenant_id = $1 AND id = $2`

func (r *ItemRepository) FindByID(ctx context.Context, db shared.DBTX, tenantID, id uuid.UUID) (*item.Item, error) {
	return r.findByID(ctx, db, findItemByIDSQL, tenantID, id)
}

// FOR UPDATE serializes concurrent availability-check-then-insert sequences
// on the same item; the row lock is held until the surrounding transaction
// commits or rolls back.
const findItemByIDForUpdateSQL = findItemByIDSQL + `
FOR UPDATE`

func (r *ItemRepository) FindByIDForUpdate(ctx context.Context, db shared.DBTX, tenantID, id uuid.UUID) (*item.Item, error) {
	return r.findByID(ctx, db, findItemByIDForUpdateSQL, tenantID, id)
}

func (r *ItemRepository) findByID(ctx context.Context, db shared.DBTX, query string, tenantID, id uuid.UUID) (*item.Item, error) {
	var (
		itemID, tenant       uuid.UUID
		name, cachedStatus   string
		createdAt, updatedAt time.Time
	)
	err := db.QueryRow(ctx, query, tenantID, id).Scan(&itemID, &tenant, &name, &cachedStatus, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("item not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find item", err)
	}

	return item.Reconstruct(itemID, tenant, name, item.CachedStatus(cachedStatus), createdAt, updatedAt), nil
}

const updateItemCachedStatusSQL = `
UPDATE items
SET cached_status = $3, updated_at = now()
WHERE tenant_id = $1 AND id = $2`

func (r *ItemRepository) UpdateCachedStatus(ctx context.Context, db shared.DBTX, tenantID, id uuid.UUID, status item.CachedStatus) error {
	tag, err := db.Exec(ctx, updateItemCachedStatusSQL, tenantID, id, status.String())
	if err != nil {
		return infra.WrapRepoErr("failed to update item cached status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("item not found", nil, infra.KindNotFound)
	}
	return nil
}
