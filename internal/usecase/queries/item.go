package queries

import (
	"context"

	"fleetrent/internal/infra"
	"fleetrent/internal/pkg/errs"

	"github.com/google/uuid"
)

type ItemReadStore interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ItemView, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, includeArchived bool) ([]*ItemView, error)
}

type ItemQueries interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ItemView, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, includeArchived bool) ([]*ItemView, error)
}

type itemQueriesImpl struct {
	readStore ItemReadStore
}

func NewItemQueries(readStore ItemReadStore) ItemQueries {
	return &itemQueriesImpl{readStore: readStore}
}

func (q *itemQueriesImpl) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ItemView, error) {
	view, err := q.readStore.FindByID(ctx, tenantID, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, errs.Wrap(err, "failed to find item")
	}
	return view, nil
}

func (q *itemQueriesImpl) ListByTenant(ctx context.Context, tenantID uuid.UUID, includeArchived bool) ([]*ItemView, error) {
	views, err := q.readStore.FindByTenant(ctx, tenantID, includeArchived)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list items")
	}
	return views, nil
}
