package item

import (
	"time"

	"fleetrent/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrEmptyName         = errs.New("item name cannot be empty")
	ErrInvalidItemStatus = errs.New("invalid item status")
)

// CachedStatus is a display signal derived from booking activity. It is
// never an input to availability checks; true availability is always
// computed from the booking set.
type CachedStatus string

const (
	StatusAvailable   CachedStatus = "available"
	StatusRented      CachedStatus = "rented"
	StatusMaintenance CachedStatus = "maintenance"
	StatusArchived    CachedStatus = "archived"
)

func NewCachedStatus(s string) (CachedStatus, error) {
	switch CachedStatus(s) {
	case StatusAvailable, StatusRented, StatusMaintenance, StatusArchived:
		return CachedStatus(s), nil
	default:
		return "", ErrInvalidItemStatus
	}
}

func (s CachedStatus) String() string {
	return string(s)
}

// Item is a rentable unit (vehicle or other asset). The tenant association
// is immutable for the life of the item.
type Item struct {
	id           uuid.UUID
	tenantID     uuid.UUID
	name         string
	cachedStatus CachedStatus
	createdAt    time.Time
	updatedAt    time.Time
}

func NewItem(tenantID uuid.UUID, name string) (*Item, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Item{
		id:           uuid.New(),
		tenantID:     tenantID,
		name:         name,
		cachedStatus: StatusAvailable,
	}, nil
}

func Reconstruct(id, tenantID uuid.UUID, name string, cachedStatus CachedStatus, createdAt, updatedAt time.Time) *Item {
	return &Item{
		id:           id,
		tenantID:     tenantID,
		name:         name,
		cachedStatus: cachedStatus,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (i *Item) IsArchived() bool {
	return i.cachedStatus == StatusArchived
}

func (i *Item) ID() uuid.UUID              { return i.id }
func (i *Item) TenantID() uuid.UUID        { return i.tenantID }
func (i *Item) Name() string               { return i.name }
func (i *Item) CachedStatus() CachedStatus { return i.cachedStatus }
func (i *Item) CreatedAt() time.Time       { return i.createdAt }
func (i *Item) UpdatedAt() time.Time       { return i.updatedAt }
