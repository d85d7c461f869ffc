package readstore

import (
	"context"

	"fleetrent/internal/infra"
	"fleetrent/internal/pkg/pgconv"
	"fleetrent/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ItemReadStore struct {
	db *pgxpool.Pool
}

func NewItemReadStore(db *pgxpool.Pool) *ItemReadStore {
	return &ItemReadStore{db: db}
}

const findItemViewSQL = `
SELECT id, name, cached_status, created_at, updated_at
FROM items
WHERE tenant_id = $1 AND id = $2`

func (s *ItemReadStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*queries.ItemView, error) {
	var view queries.ItemView
	err := s.db.QueryRow(ctx, findItemViewSQL, tenantID, id).Scan(
		&view.ID, &view.Name, &view.CachedStatus, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("item not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find item view", err)
	}
	return &view, nil
}

const listItemsSQL = `
SELECT id, name, cached_status, created_at, updated_at
FROM items
WHERE tenant_id = $1 AND ($2 OR cached_status <> 'archived')
ORDER BY name`

func (s *ItemReadStore) FindByTenant(ctx context.Context, tenantID uuid.UUID, includeArchived bool) ([]*queries.ItemView, error) {
	rows, err := s.db.Query(ctx, listItemsSQL, tenantID, includeArchived)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list items", err)
	}
	defer rows.Close()

	var result []*queries.ItemView
	for rows.Next() {
		var view queries.ItemView
		if scanErr := rows.Scan(&view.ID, &view.Name, &view.CachedStatus, &view.CreatedAt, &view.UpdatedAt); scanErr != nil {
			return nil, infra.WrapRepoErr("failed to scan item row", scanErr)
		}
		result = append(result, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read item list", err)
	}
	return result, nil
}
