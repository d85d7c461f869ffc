//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetrent/internal/domain/booking"
	"fleetrent/internal/domain/item"
	"fleetrent/internal/infra"
	"fleetrent/internal/usecase/commands"
	"fleetrent/internal/usecase/queries"
	"fleetrent/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes. The overlap predicate delegates to the domain interval
// and the blocking-status policy, so these tests exercise the same rules
// the SQL query encodes.

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*booking.Booking
	// raceWinner simulates a competing insert committing between the overlap
	// check and our insert: Create stores it and fails the way the exclusion
	// constraint does.
	raceWinner *booking.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[uuid.UUID]*booking.Booking{}}
}

func (r *fakeBookingRepo) Create(_ context.Context, _ shared.DBTX, b *booking.Booking) (uuid.UUID, error) {
	if r.raceWinner != nil {
		r.bookings[r.raceWinner.ID()] = r.raceWinner
		r.raceWinner = nil
		return uuid.Nil, infra.WrapRepoErr("booking overlaps an existing booking", errConstraint, infra.KindConflict)
	}
	r.bookings[b.ID()] = b
	return b.ID(), nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, _ shared.DBTX, tenantID, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.bookings[id]
	if !ok || b.TenantID() != tenantID {
		return nil, infra.WrapRepoErr("booking not found", errNotFound, infra.KindNotFound)
	}
	return b, nil
}

func (r *fakeBookingRepo) FindOverlapping(_ context.Context, _ shared.DBTX, tenantID, itemID uuid.UUID, iv booking.Interval, excludeID *uuid.UUID) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.TenantID() != tenantID || b.ItemID() != itemID {
			continue
		}
		if !b.Status().BlocksAvailability() {
			continue
		}
		if excludeID != nil && b.ID() == *excludeID {
			continue
		}
		if b.Interval().Overlaps(iv) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) Update(_ context.Context, _ shared.DBTX, b *booking.Booking) error {
	if _, ok := r.bookings[b.ID()]; !ok {
		return infra.WrapRepoErr("booking not found", errNotFound, infra.KindNotFound)
	}
	r.bookings[b.ID()] = b
	return nil
}

type fakeItemRepo struct {
	items          map[uuid.UUID]*item.Item
	cachedStatuses map[uuid.UUID]item.CachedStatus
	lockCount      int
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:          map[uuid.UUID]*item.Item{},
		cachedStatuses: map[uuid.UUID]item.CachedStatus{},
	}
}

func (r *fakeItemRepo) Create(_ context.Context, _ shared.DBTX, it *item.Item) (uuid.UUID, error) {
	r.items[it.ID()] = it
	return it.ID(), nil
}

func (r *fakeItemRepo) FindByID(_ context.Context, _ shared.DBTX, tenantID, id uuid.UUID) (*item.Item, error) {
	it, ok := r.items[id]
	if !ok || it.TenantID() != tenantID {
		return nil, infra.WrapRepoErr("item not found", errNotFound, infra.KindNotFound)
	}
	return it, nil
}

func (r *fakeItemRepo) FindByIDForUpdate(ctx context.Context, db shared.DBTX, tenantID, id uuid.UUID) (*item.Item, error) {
	r.lockCount++
	return r.FindByID(ctx, db, tenantID, id)
}

func (r *fakeItemRepo) UpdateCachedStatus(_ context.Context, _ shared.DBTX, tenantID, id uuid.UUID, status item.CachedStatus) error {
	it, ok := r.items[id]
	if !ok || it.TenantID() != tenantID {
		return infra.WrapRepoErr("item not found", errNotFound, infra.KindNotFound)
	}
	r.cachedStatuses[id] = status
	return nil
}

type fakeUserRepo struct{}

func (*fakeUserRepo) UpdateLastLogin(_ context.Context, _ shared.DBTX, _ uuid.UUID) error {
	return nil
}

type fakeTx struct {
	bookings *fakeBookingRepo
	items    *fakeItemRepo
}

func (t *fakeTx) Bookings() shared.BookingRepository { return t.bookings }
func (t *fakeTx) Items() shared.ItemRepository       { return t.items }
func (t *fakeTx) Users() shared.UserRepository       { return &fakeUserRepo{} }
func (t *fakeTx) DB() shared.DBTX                    { return nil }

type fakeUoW struct {
	tx *fakeTx
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db shared.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db shared.DBTX) error) error {
	return fn(ctx, nil)
}

type fakeBookingReadStore struct {
	repo *fakeBookingRepo
}

func (s *fakeBookingReadStore) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*queries.BookingView, error) {
	b, err := s.repo.FindByID(ctx, nil, tenantID, id)
	if err != nil {
		return nil, err
	}
	return &queries.BookingView{
		ID:         b.ID(),
		ItemID:     b.ItemID(),
		CustomerID: b.CustomerID(),
		StartAt:    b.Interval().Start(),
		EndAt:      b.Interval().End(),
		Status:     b.Status().String(),
	}, nil
}

func (s *fakeBookingReadStore) FindByTenant(_ context.Context, _ uuid.UUID, _ queries.BookingFilter) ([]*queries.BookingListItem, error) {
	return nil, nil
}

var (
	errNotFound   = errors.New("no rows")
	errConstraint = errors.New("exclusion constraint violation")
)

type fixture struct {
	uow      *fakeUoW
	bookings *fakeBookingRepo
	items    *fakeItemRepo
	cmd      commands.BookingCommands
	tenantID uuid.UUID
	itemID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	bookings := newFakeBookingRepo()
	items := newFakeItemRepo()
	uow := &fakeUoW{tx: &fakeTx{bookings: bookings, items: items}}

	tenantID := uuid.New()
	it, err := item.NewItem(tenantID, "Transit Van")
	require.NoError(t, err)
	items.items[it.ID()] = it

	return &fixture{
		uow:      uow,
		bookings: bookings,
		items:    items,
		cmd:      commands.NewBookingCommands(uow, bookings, items, &fakeBookingReadStore{repo: bookings}),
		tenantID: tenantID,
		itemID:   it.ID(),
	}
}

func (f *fixture) seedBooking(t *testing.T, start, end string, status booking.Status) *booking.Booking {
	t.Helper()

	iv := mustInterval(t, start, end)
	b, err := booking.NewBooking(f.tenantID, f.itemID, nil, iv, booking.StatusPending, "")
	require.NoError(t, err)
	if status != booking.StatusPending {
		b = booking.Reconstruct(b.ID(), f.tenantID, f.itemID, nil, iv, status, "", time.Now(), time.Now())
	}
	f.bookings.bookings[b.ID()] = b
	return b
}

func mustInterval(t *testing.T, start, end string) booking.Interval {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	e, err := time.Parse(time.RFC3339, end)
	require.NoError(t, err)
	iv, err := booking.NewInterval(s, e)
	require.NoError(t, err)
	return iv
}

func createInput(f *fixture, start, end string) commands.CreateBookingInput {
	s, _ := time.Parse(time.RFC3339, start)
	e, _ := time.Parse(time.RFC3339, end)
	return commands.CreateBookingInput{
		ItemID:  f.itemID,
		StartAt: s,
		EndAt:   e,
	}
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending booking on a free item", func(t *testing.T) {
		f := newFixture(t)

		view, err := f.cmd.CreateBooking(ctx, f.tenantID, createInput(f, "2026-03-10T09:00:00Z", "2026-03-12T18:00:00Z"))
		require.NoError(t, err)
		assert.Equal(t, "pending", view.Status)
		assert.Equal(t, 1, f.items.lockCount, "item row must be locked before the overlap check")
	})

	t.Run("confirm flag creates a confirmed booking", func(t *testing.T) {
		f := newFixture(t)
		input := createInput(f, "2026-03-10T09:00:00Z", "2026-03-12T18:00:00Z")
		input.Confirm = true

		view, err := f.cmd.CreateBooking(ctx, f.tenantID, input)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", view.Status)
	})

	t.Run("overlapping booking is rejected with the conflict set", func(t *testing.T) {
		f := newFixture(t)
		existing := f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-15T00:00:00Z", booking.StatusConfirmed)

		_, err := f.cmd.CreateBooking(ctx, f.tenantID, createInput(f, "2026-03-12T00:00:00Z", "2026-03-20T00:00:00Z"))
		require.Error(t, err)
		assert.ErrorIs(t, err, commands.ErrBookingConflict)

		var conflictErr *commands.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		require.Len(t, conflictErr.Conflicts, 1)
		assert.Equal(t, existing.ID(), conflictErr.Conflicts[0].ID)
	})

	t.Run("back-to-back bookings touch without conflict", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-15T00:00:00Z", booking.StatusConfirmed)

		_, err := f.cmd.CreateBooking(ctx, f.tenantID, createInput(f, "2026-03-15T00:00:00Z", "2026-03-20T00:00:00Z"))
		assert.NoError(t, err)
	})

	t.Run("cancelled and completed bookings do not block", func(t *testing.T) {
		f := newFixture(t)
		f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-15T00:00:00Z", booking.StatusCancelled)
		f.seedBooking(t, "2026-03-12T00:00:00Z", "2026-03-18T00:00:00Z", booking.StatusCompleted)

		_, err := f.cmd.CreateBooking(ctx, f.tenantID, createInput(f, "2026-03-11T00:00:00Z", "2026-03-16T00:00:00Z"))
		assert.NoError(t, err)
	})

	t.Run("unknown item", func(t *testing.T) {
		f := newFixture(t)
		input := createInput(f, "2026-03-10T09:00:00Z", "2026-03-12T18:00:00Z")
		input.ItemID = uuid.New()

		_, err := f.cmd.CreateBooking(ctx, f.tenantID, input)
		assert.ErrorIs(t, err, commands.ErrItemNotFound)
	})

	t.Run("archived item", func(t *testing.T) {
		f := newFixture(t)
		archived := item.Reconstruct(uuid.New(), f.tenantID, "Old Truck", item.StatusArchived, time.Now(), time.Now())
		f.items.items[archived.ID()] = archived

		input := createInput(f, "2026-03-10T09:00:00Z", "2026-03-12T18:00:00Z")
		input.ItemID = archived.ID()

		_, err := f.cmd.CreateBooking(ctx, f.tenantID, input)
		assert.ErrorIs(t, err, commands.ErrItemArchived)
	})

	t.Run("invalid interval never reaches the repository", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.cmd.CreateBooking(ctx, f.tenantID, createInput(f, "2026-03-12T00:00:00Z", "2026-03-12T00:00:00Z"))
		assert.ErrorIs(t, err, booking.ErrInvalidInterval)
		assert.Equal(t, 0, f.items.lockCount)
	})

	t.Run("other tenant's bookings are invisible", func(t *testing.T) {
		f := newFixture(t)
		other := newFixture(t)
		// Same item id space, different tenant.
		foreign, err := booking.NewBooking(other.tenantID, f.itemID, nil,
			mustInterval(t, "2026-03-10T00:00:00Z", "2026-03-15T00:00:00Z"), booking.StatusConfirmed, "")
		require.NoError(t, err)
		f.bookings.bookings[foreign.ID()] = foreign

		_, err = f.cmd.CreateBooking(ctx, f.tenantID, createInput(f, "2026-03-11T00:00:00Z", "2026-03-13T00:00:00Z"))
		assert.NoError(t, err)
	})

	t.Run("losing the insert race still reports the winning booking", func(t *testing.T) {
		f := newFixture(t)
		winner, err := booking.NewBooking(f.tenantID, f.itemID, nil,
			mustInterval(t, "2026-03-10T00:00:00Z", "2026-03-15T00:00:00Z"), booking.StatusConfirmed, "")
		require.NoError(t, err)
		f.bookings.raceWinner = winner

		_, err = f.cmd.CreateBooking(ctx, f.tenantID, createInput(f, "2026-03-12T00:00:00Z", "2026-03-14T00:00:00Z"))
		require.ErrorIs(t, err, commands.ErrBookingConflict)

		var conflictErr *commands.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		require.Len(t, conflictErr.Conflicts, 1)
		assert.Equal(t, winner.ID(), conflictErr.Conflicts[0].ID)
	})
}

func TestEditBookingDates(t *testing.T) {
	ctx := context.Background()
	parse := func(t *testing.T, v string) time.Time {
		t.Helper()
		ts, err := time.Parse(time.RFC3339, v)
		require.NoError(t, err)
		return ts
	}

	t.Run("moving within own slot succeeds via self-exclusion", func(t *testing.T) {
		f := newFixture(t)
		b := f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-15T00:00:00Z", booking.StatusConfirmed)

		// New period overlaps the booking's own current period.
		view, err := f.cmd.EditBookingDates(ctx, f.tenantID, b.ID(),
			parse(t, "2026-03-12T00:00:00Z"), parse(t, "2026-03-17T00:00:00Z"))
		require.NoError(t, err)
		assert.Equal(t, parse(t, "2026-03-12T00:00:00Z"), view.StartAt)
	})

	t.Run("conflict with another booking", func(t *testing.T) {
		f := newFixture(t)
		b := f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-12T00:00:00Z", booking.StatusPending)
		blocking := f.seedBooking(t, "2026-03-15T00:00:00Z", "2026-03-20T00:00:00Z", booking.StatusConfirmed)

		_, err := f.cmd.EditBookingDates(ctx, f.tenantID, b.ID(),
			parse(t, "2026-03-14T00:00:00Z"), parse(t, "2026-03-16T00:00:00Z"))
		require.Error(t, err)

		var conflictErr *commands.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		require.Len(t, conflictErr.Conflicts, 1)
		assert.Equal(t, blocking.ID(), conflictErr.Conflicts[0].ID)
	})

	t.Run("locked once in progress", func(t *testing.T) {
		f := newFixture(t)
		b := f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-12T00:00:00Z", booking.StatusInProgress)

		_, err := f.cmd.EditBookingDates(ctx, f.tenantID, b.ID(),
			parse(t, "2026-03-20T00:00:00Z"), parse(t, "2026-03-22T00:00:00Z"))
		assert.ErrorIs(t, err, commands.ErrIntervalLocked)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.cmd.EditBookingDates(ctx, f.tenantID, uuid.New(),
			parse(t, "2026-03-20T00:00:00Z"), parse(t, "2026-03-22T00:00:00Z"))
		assert.ErrorIs(t, err, commands.ErrBookingNotFound)
	})
}

func TestBookingTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("full lifecycle updates the cached item status", func(t *testing.T) {
		f := newFixture(t)
		b := f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-12T00:00:00Z", booking.StatusPending)

		view, err := f.cmd.ConfirmBooking(ctx, f.tenantID, b.ID())
		require.NoError(t, err)
		assert.Equal(t, "confirmed", view.Status)
		assert.Empty(t, f.items.cachedStatuses, "confirm has no cache side effect")

		view, err = f.cmd.StartBooking(ctx, f.tenantID, b.ID())
		require.NoError(t, err)
		assert.Equal(t, "in_progress", view.Status)
		assert.Equal(t, item.StatusRented, f.items.cachedStatuses[f.itemID])

		view, err = f.cmd.CompleteBooking(ctx, f.tenantID, b.ID())
		require.NoError(t, err)
		assert.Equal(t, "completed", view.Status)
		assert.Equal(t, item.StatusAvailable, f.items.cachedStatuses[f.itemID])
	})

	t.Run("cancel from pending leaves the cache alone", func(t *testing.T) {
		f := newFixture(t)
		b := f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-12T00:00:00Z", booking.StatusPending)

		view, err := f.cmd.CancelBooking(ctx, f.tenantID, b.ID())
		require.NoError(t, err)
		assert.Equal(t, "cancelled", view.Status)
		assert.Empty(t, f.items.cachedStatuses)
	})

	t.Run("cancel during rental frees the item", func(t *testing.T) {
		f := newFixture(t)
		b := f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-12T00:00:00Z", booking.StatusInProgress)

		_, err := f.cmd.CancelBooking(ctx, f.tenantID, b.ID())
		require.NoError(t, err)
		assert.Equal(t, item.StatusAvailable, f.items.cachedStatuses[f.itemID])
	})

	t.Run("invalid transition reports from and to", func(t *testing.T) {
		f := newFixture(t)
		b := f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-12T00:00:00Z", booking.StatusCompleted)

		_, err := f.cmd.StartBooking(ctx, f.tenantID, b.ID())
		require.Error(t, err)
		assert.ErrorIs(t, err, commands.ErrInvalidTransition)

		var transitionErr *commands.TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, booking.StatusCompleted, transitionErr.From)
		assert.Equal(t, booking.StatusInProgress, transitionErr.To)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		f := newFixture(t)
		b := f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-12T00:00:00Z", booking.StatusPending)

		_, err := f.cmd.CancelBooking(ctx, f.tenantID, b.ID())
		require.NoError(t, err)

		_, err = f.cmd.CancelBooking(ctx, f.tenantID, b.ID())
		assert.ErrorIs(t, err, commands.ErrInvalidTransition)
	})

	t.Run("a cancelled booking frees the slot for a new one", func(t *testing.T) {
		f := newFixture(t)
		b := f.seedBooking(t, "2026-03-10T00:00:00Z", "2026-03-15T00:00:00Z", booking.StatusPending)

		_, err := f.cmd.CancelBooking(ctx, f.tenantID, b.ID())
		require.NoError(t, err)

		_, err = f.cmd.CreateBooking(ctx, f.tenantID, createInput(f, "2026-03-11T00:00:00Z", "2026-03-14T00:00:00Z"))
		assert.NoError(t, err)
	})
}
