package commands

import (
	"context"

	"fleetrent/internal/domain/item"
	"fleetrent/internal/infra"
	"fleetrent/internal/pkg/errs"
	"fleetrent/internal/usecase/queries"
	"fleetrent/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidItemStatus = errs.New("invalid item status")

type ItemCommands interface {
	CreateItem(ctx context.Context, tenantID uuid.UUID, name string) (*queries.ItemView, error)
	// SetItemStatus manages the display cache directly (maintenance,
	// archived, back to available). It never consults bookings; the cache
	// is not an availability source.
	SetItemStatus(ctx context.Context, tenantID, itemID uuid.UUID, status string) (*queries.ItemView, error)
}

type itemCommandsImpl struct {
	uow       shared.UnitOfWork
	readStore queries.ItemReadStore
}

func NewItemCommands(uow shared.UnitOfWork, readStore queries.ItemReadStore) ItemCommands {
	return &itemCommandsImpl{
		uow:       uow,
		readStore: readStore,
	}
}

func (c *itemCommandsImpl) CreateItem(ctx context.Context, tenantID uuid.UUID, name string) (*queries.ItemView, error) {
	entity, err := item.NewItem(tenantID, name)
	if err != nil {
		return nil, err
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, createErr := tx.Items().Create(ctx, tx.DB(), entity); createErr != nil {
			return errs.Mark(createErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.readStore.FindByID(ctx, tenantID, entity.ID())
}

func (c *itemCommandsImpl) SetItemStatus(ctx context.Context, tenantID, itemID uuid.UUID, status string) (*queries.ItemView, error) {
	cached, err := item.NewCachedStatus(status)
	if err != nil {
		return nil, ErrInvalidItemStatus
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if updateErr := tx.Items().UpdateCachedStatus(ctx, tx.DB(), tenantID, itemID, cached); updateErr != nil {
			if infra.IsKind(updateErr, infra.KindNotFound) {
				return ErrItemNotFound
			}
			return errs.Mark(updateErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.readStore.FindByID(ctx, tenantID, itemID)
}
