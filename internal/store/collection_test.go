package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/bus"
)

type categoryRemote = fakeRemote[domain.Category, domain.CategoryPatch, *domain.Category]

var errServer = domain.NewError(domain.ErrCodeUnavailable, "server unavailable")

func ptr[T any](v T) *T { return &v }

func seedCategories(userID int64) []domain.Category {
	return []domain.Category{
		{Record: domain.Record{ID: domain.Confirmed(1), UserID: userID, CreatedAt: domain.At(testNow)}, Name: "Work"},
		{Record: domain.Record{ID: domain.Confirmed(2), UserID: userID, CreatedAt: domain.At(testNow)}, Name: "Home"},
	}
}

func newCategoryStore(t *testing.T) (*Categories, *categoryRemote, *bus.Bus) {
	t.Helper()
	b := bus.New(zap.NewNop())
	remote := newFakeRemote[domain.Category, domain.CategoryPatch](seedCategories(1)...)
	categories, detach := NewCategories(remote, b, zap.NewNop(), Options{Clock: fixedClock})
	t.Cleanup(detach)
	return categories, remote, b
}

func login(b *bus.Bus, userID int64, categories []domain.Category) {
	bus.Publish(b, bus.AuthStatusChanged, bus.AuthStatusChangedEvent{
		IsAuthenticated: true,
		Identity:        &domain.Identity{ID: userID, Username: "user"},
	})
	bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: userID, Categories: categories})
}

func settle[T any](t *testing.T, op *Op[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := op.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return result, err
}

func TestAddAppearsImmediatelyAndIsReplacedOnConfirm(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	remote.hold()

	op := categories.Add(context.Background(), domain.Category{Name: "Gym"})

	items := categories.Items()
	require.Len(t, items, 3)
	provisional := items[2]
	assert.True(t, provisional.ID.IsPending())
	assert.Equal(t, int64(1), provisional.UserID)
	assert.Equal(t, "Gym", provisional.Name)
	assert.True(t, categories.HasPendingWrites())
	assert.NoError(t, op.Err())

	remote.release()
	created, err := settle(t, op)
	require.NoError(t, err)
	assert.Equal(t, domain.Confirmed(3), created.ID)

	items = categories.Items()
	require.Len(t, items, 3)
	assert.Equal(t, created, items[2])
	assert.False(t, categories.HasPendingWrites())
	_, stillPending := categories.Get(provisional.ID)
	assert.False(t, stillPending)

	n, _, _ := remote.calls()
	assert.Equal(t, 1, n)
	remote.mu.Lock()
	sent := remote.created[0]
	remote.mu.Unlock()
	assert.False(t, sent.ID.IsPending(), "pending tokens stay on the client")
	assert.Equal(t, int64(1), sent.UserID)
}

func TestAddFailureRemovesProvisionalRecord(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	remote.fail(errServer)

	_, err := settle(t, categories.Add(context.Background(), domain.Category{Name: "Gym"}))

	assert.ErrorIs(t, err, errServer)
	assert.Equal(t, seedCategories(1), categories.Items())
	assert.False(t, categories.HasPendingWrites())
}

func TestUpdateFailureRestoresExactRecord(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	before := categories.Items()
	remote.hold()
	remote.fail(errServer)

	op := categories.Update(context.Background(), domain.Confirmed(1), domain.CategoryPatch{
		Name:        ptr("Office"),
		Description: domain.Set("day job"),
	})

	optimistic, ok := categories.Get(domain.Confirmed(1))
	require.True(t, ok)
	assert.Equal(t, "Office", optimistic.Name)
	assert.Equal(t, "day job", *optimistic.Description)

	remote.release()
	_, err := settle(t, op)

	assert.ErrorIs(t, err, errServer)
	assert.Equal(t, before, categories.Items())
}

func TestUpdateSuccessAdoptsServerRecord(t *testing.T) {
	b := bus.New(nil)
	server := seedCategories(1)
	server[0].Icon = ptr("briefcase")
	remote := newFakeRemote[domain.Category, domain.CategoryPatch](server...)
	categories, detach := NewCategories(remote, b, nil, Options{})
	defer detach()
	login(b, 1, seedCategories(1))

	updated, err := settle(t, categories.Update(context.Background(), domain.Confirmed(1), domain.CategoryPatch{Name: ptr("Office")}))
	require.NoError(t, err)

	local, ok := categories.Get(domain.Confirmed(1))
	require.True(t, ok)
	assert.Equal(t, updated, local)
	assert.Equal(t, "briefcase", *local.Icon)
	assert.Equal(t, "Office", local.Name)
}

func TestDeleteFailureRestoresCollectionOrder(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	remote.hold()
	remote.fail(errServer)

	op := categories.Delete(context.Background(), domain.Confirmed(1))

	assert.Equal(t, 1, categories.Len())
	_, present := categories.Get(domain.Confirmed(1))
	assert.False(t, present)

	remote.release()
	_, err := settle(t, op)

	assert.ErrorIs(t, err, errServer)
	assert.Equal(t, seedCategories(1), categories.Items())
}

func TestDeleteFailureKeepsAddConfirmedMeanwhile(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	remote.holdOp("create")
	remote.holdOp("delete")
	remote.failOp("delete", errServer)

	add := categories.Add(context.Background(), domain.Category{Name: "Gym"})
	del := categories.Delete(context.Background(), domain.Confirmed(1))

	remote.releaseOp("create")
	created, err := settle(t, add)
	require.NoError(t, err)
	require.Equal(t, domain.Confirmed(3), created.ID)

	remote.releaseOp("delete")
	_, err = settle(t, del)
	require.ErrorIs(t, err, errServer)

	items := categories.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Work", "Home", "Gym"}, []string{items[0].Name, items[1].Name, items[2].Name})
	for _, item := range items {
		assert.True(t, item.ID.IsConfirmed(), "%s is still provisional", item.Name)
	}

	remote.failOp("delete", nil)
	again, err := settle(t, categories.Delete(context.Background(), created.ID))
	require.NoError(t, err)
	assert.Equal(t, "Gym", again.Name)
}

func TestDeleteSuccessReturnsRemovedRecord(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))

	removed, err := settle(t, categories.Delete(context.Background(), domain.Confirmed(2)))

	require.NoError(t, err)
	assert.Equal(t, "Home", removed.Name)
	assert.Equal(t, seedCategories(1)[:1], categories.Items())
	_, _, deleted := remote.calls()
	assert.Equal(t, []int64{2}, deleted)
}

func TestHasPendingWritesTracksEveryMutation(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	remote.hold()

	first := categories.Update(context.Background(), domain.Confirmed(1), domain.CategoryPatch{Name: ptr("A")})
	second := categories.Update(context.Background(), domain.Confirmed(2), domain.CategoryPatch{Name: ptr("B")})
	assert.True(t, categories.HasPendingWrites())

	remote.release()
	select {
	case <-first.Done():
	case <-second.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("no mutation settled")
	}
	assert.True(t, categories.HasPendingWrites(), "one mutation is still in flight")

	remote.release()
	_, _ = settle(t, first)
	_, _ = settle(t, second)
	assert.False(t, categories.HasPendingWrites())
}

func TestMutationsWithoutSessionAreRejected(t *testing.T) {
	categories, remote, _ := newCategoryStore(t)

	add := categories.Add(context.Background(), domain.Category{Name: "x"})
	update := categories.Update(context.Background(), domain.Confirmed(1), domain.CategoryPatch{Name: ptr("y")})
	del := categories.Delete(context.Background(), domain.Confirmed(1))

	for _, err := range []error{add.Err(), update.Err(), del.Err()} {
		assert.ErrorIs(t, err, domain.ErrNoSession)
	}
	assert.Empty(t, categories.Items())
	assert.False(t, categories.HasPendingWrites())
	created, patched, deleted := remote.calls()
	assert.Zero(t, created+patched+len(deleted))
}

func TestPendingAndUnknownIDsAreRejected(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	remote.hold()

	add := categories.Add(context.Background(), domain.Category{Name: "Gym"})
	pending := categories.Items()[2].ID

	update := categories.Update(context.Background(), pending, domain.CategoryPatch{Name: ptr("Pool")})
	assert.ErrorIs(t, update.Err(), domain.ErrRecordPending)
	del := categories.Delete(context.Background(), pending)
	assert.ErrorIs(t, del.Err(), domain.ErrRecordPending)

	unknown := categories.Update(context.Background(), domain.Confirmed(99), domain.CategoryPatch{Name: ptr("?")})
	assert.ErrorIs(t, unknown.Err(), domain.ErrRecordNotFound)
	assert.ErrorIs(t, categories.Delete(context.Background(), domain.ID{}).Err(), domain.ErrRecordNotFound)

	remote.release()
	_, err := settle(t, add)
	require.NoError(t, err)
	assert.Len(t, categories.Items(), 3)
}

func TestLogoutDiscardsLateCompletions(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	remote.hold()
	remote.fail(errServer)

	update := categories.Update(context.Background(), domain.Confirmed(1), domain.CategoryPatch{Name: ptr("Office")})
	add := categories.Add(context.Background(), domain.Category{Name: "Gym"})

	bus.Publish(b, bus.AuthStatusChanged, bus.AuthStatusChangedEvent{IsAuthenticated: false})
	assert.Empty(t, categories.Items())
	assert.False(t, categories.HasPendingWrites())

	other := []domain.Category{{Record: domain.Record{ID: domain.Confirmed(1), UserID: 2}, Name: "Theirs"}}
	login(b, 2, other)

	remote.release()
	remote.release()
	_, updateErr := settle(t, update)
	_, addErr := settle(t, add)

	assert.Error(t, updateErr)
	assert.Error(t, addErr)
	assert.Equal(t, other, categories.Items(), "completions from the previous session must not touch the new one")
	assert.False(t, categories.HasPendingWrites())
}

func TestUserDataLoadedReplacesWholesale(t *testing.T) {
	categories, _, b := newCategoryStore(t)
	data := seedCategories(1)

	login(b, 1, data)
	login(b, 1, data)
	assert.Equal(t, data, categories.Items())

	data[0].Name = "mutated by caller"
	assert.Equal(t, "Work", categories.Items()[0].Name)

	bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: 1})
	assert.Empty(t, categories.Items())
}

func TestReloadSkippedWhileWritesInFlight(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	remote.hold()

	add := categories.Add(context.Background(), domain.Category{Name: "Gym"})
	bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: 1, Categories: seedCategories(1)})
	assert.Len(t, categories.Items(), 3, "a reload must not drop the provisional record")

	remote.release()
	created, err := settle(t, add)
	require.NoError(t, err)
	_, ok := categories.Get(created.ID)
	assert.True(t, ok)

	bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: 1, Categories: seedCategories(1)})
	assert.Equal(t, seedCategories(1), categories.Items())
}

func TestSwitchingUserAbandonsWrites(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	remote.hold()

	add := categories.Add(context.Background(), domain.Category{Name: "Gym"})
	login(b, 2, nil)
	assert.Empty(t, categories.Items())
	assert.False(t, categories.HasPendingWrites())

	remote.release()
	_, err := settle(t, add)
	require.NoError(t, err)
	assert.Empty(t, categories.Items())
}

func TestAuthStatusChangedSetsOwner(t *testing.T) {
	categories, _, b := newCategoryStore(t)
	bus.Publish(b, bus.AuthStatusChanged, bus.AuthStatusChangedEvent{
		IsAuthenticated: true,
		Identity:        &domain.Identity{ID: 5, Username: "five"},
	})

	created, err := settle(t, categories.Add(context.Background(), domain.Category{Record: domain.Record{UserID: 99}, Name: "x"}))
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.UserID)
}

func TestWaitDrainsInFlightMutations(t *testing.T) {
	categories, remote, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	remote.hold()
	categories.Update(context.Background(), domain.Confirmed(1), domain.CategoryPatch{Name: ptr("A")})

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, categories.Wait(short), context.DeadlineExceeded)

	remote.release()
	assert.NoError(t, categories.Wait(context.Background()))
}

func TestCancelledCallerContextDoesNotAbortMutation(t *testing.T) {
	categories, _, b := newCategoryStore(t)
	login(b, 1, seedCategories(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op := categories.Update(ctx, domain.Confirmed(2), domain.CategoryPatch{Name: ptr("Flat")})
	_, err := settle(t, op)

	require.NoError(t, err)
	got, _ := categories.Get(domain.Confirmed(2))
	assert.Equal(t, "Flat", got.Name)
}

func TestFailedOpIsSettled(t *testing.T) {
	op := FailedOp[int](errors.New("nope"))
	select {
	case <-op.Done():
	default:
		t.Fatal("failed op must be settled")
	}
	_, err := op.Wait(context.Background())
	assert.EqualError(t, err, "nope")

	op.Resolve(1, nil)
	assert.EqualError(t, op.Err(), "nope", "Resolve only takes effect once")
}
