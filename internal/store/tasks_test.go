package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/bus"
)

func TestTaskCompletionStampsCompletedAt(t *testing.T) {
	b := bus.New(nil)
	open := domain.Task{Record: domain.Record{ID: domain.Confirmed(1), UserID: 1}, Title: "write report"}
	remote := newFakeRemote[domain.Task, domain.TaskPatch](open)
	tasks, detach := NewTasks(remote, b, nil, Options{Clock: fixedClock})
	defer detach()
	bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: 1, Tasks: []domain.Task{open}})

	done, err := settle(t, tasks.SetCompleted(context.Background(), domain.Confirmed(1), true))
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, testNow.Equal(done.CompletedAt.Time))

	remote.mu.Lock()
	sent := remote.patches[0]
	remote.mu.Unlock()
	assert.True(t, sent.CompletedAt.IsSet(), "completed_at travels with is_completed")

	reopened, err := settle(t, tasks.SetCompleted(context.Background(), domain.Confirmed(1), false))
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted)
	assert.Nil(t, reopened.CompletedAt)
}

func TestTaskUpdateKeepsCompletionConsistent(t *testing.T) {
	yes, no := true, false
	earlier := domain.At(testNow.Add(-time.Hour))
	completed := domain.Task{
		Record:      domain.Record{ID: domain.Confirmed(1), UserID: 1},
		Title:       "write report",
		IsCompleted: true,
		CompletedAt: &earlier,
	}
	open := domain.Task{Record: domain.Record{ID: domain.Confirmed(1), UserID: 1}, Title: "write report"}

	tests := []struct {
		name     string
		initial  domain.Task
		patch    domain.TaskPatch
		wantDone bool
		wantAt   *domain.Timestamp
	}{
		{
			name:     "clearing completed_at reopens the task",
			initial:  completed,
			patch:    domain.TaskPatch{CompletedAt: domain.Null[domain.Timestamp]()},
			wantDone: false,
		},
		{
			name:     "completing with a null completed_at stamps now",
			initial:  open,
			patch:    domain.TaskPatch{IsCompleted: &yes, CompletedAt: domain.Null[domain.Timestamp]()},
			wantDone: true,
			wantAt:   ptr(domain.At(testNow)),
		},
		{
			name:     "reopening ignores a provided completed_at",
			initial:  completed,
			patch:    domain.TaskPatch{IsCompleted: &no, CompletedAt: domain.Set(earlier)},
			wantDone: false,
		},
		{
			name:     "completing keeps a provided completed_at",
			initial:  open,
			patch:    domain.TaskPatch{IsCompleted: &yes, CompletedAt: domain.Set(earlier)},
			wantDone: true,
			wantAt:   &earlier,
		},
		{
			name:     "setting completed_at alone completes the task",
			initial:  open,
			patch:    domain.TaskPatch{CompletedAt: domain.Set(earlier)},
			wantDone: true,
			wantAt:   &earlier,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bus.New(nil)
			remote := newFakeRemote[domain.Task, domain.TaskPatch](tt.initial)
			tasks, detach := NewTasks(remote, b, nil, Options{Clock: fixedClock})
			defer detach()
			bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: 1, Tasks: []domain.Task{tt.initial}})
			remote.hold()

			op := tasks.Update(context.Background(), domain.Confirmed(1), tt.patch)

			local, ok := tasks.Get(domain.Confirmed(1))
			require.True(t, ok)
			assertCompletion(t, local, tt.wantDone, tt.wantAt)

			remote.release()
			updated, err := settle(t, op)
			require.NoError(t, err)
			assertCompletion(t, updated, tt.wantDone, tt.wantAt)

			remote.mu.Lock()
			sent := remote.patches[0]
			remote.mu.Unlock()
			require.NotNil(t, sent.IsCompleted)
			assert.Equal(t, tt.wantDone, *sent.IsCompleted)
			assert.Equal(t, tt.wantAt, sent.CompletedAt.Value())
		})
	}
}

func assertCompletion(t *testing.T, task domain.Task, done bool, at *domain.Timestamp) {
	t.Helper()
	assert.Equal(t, done, task.IsCompleted)
	if at == nil {
		assert.Nil(t, task.CompletedAt)
		return
	}
	require.NotNil(t, task.CompletedAt)
	assert.True(t, at.Equal(task.CompletedAt.Time))
}

func TestTaskAddNormalizesCompletion(t *testing.T) {
	b := bus.New(nil)
	remote := newFakeRemote[domain.Task, domain.TaskPatch]()
	tasks, detach := NewTasks(remote, b, nil, Options{Clock: fixedClock})
	defer detach()
	bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: 3})

	created, err := settle(t, tasks.Add(context.Background(), domain.Task{Title: "already done", IsCompleted: true}))
	require.NoError(t, err)
	require.NotNil(t, created.CompletedAt)
	assert.Equal(t, int64(3), created.UserID)
}

func TestTasksByCategory(t *testing.T) {
	b := bus.New(nil)
	tasks, detach := NewTasks(newFakeRemote[domain.Task, domain.TaskPatch](), b, nil, Options{})
	defer detach()
	work := int64(7)
	bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: 1, Tasks: []domain.Task{
		{Record: domain.Record{ID: domain.Confirmed(1)}, Title: "a", CategoryID: &work},
		{Record: domain.Record{ID: domain.Confirmed(2)}, Title: "b"},
		{Record: domain.Record{ID: domain.Confirmed(3)}, Title: "c", CategoryID: &work},
	}})

	assert.Len(t, tasks.ByCategory(&work), 2)
	uncategorized := tasks.ByCategory(nil)
	require.Len(t, uncategorized, 1)
	assert.Equal(t, "b", uncategorized[0].Title)
}

func TestEventsBetween(t *testing.T) {
	b := bus.New(nil)
	events, detach := NewEvents(newFakeRemote[domain.Event, domain.EventPatch](), b, nil, Options{})
	defer detach()
	at := func(h int) domain.Timestamp { return domain.At(testNow.Add(time.Duration(h) * time.Hour)) }
	bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: 1, Events: []domain.Event{
		{Record: domain.Record{ID: domain.Confirmed(1)}, Title: "past", StartTime: at(-2)},
		{Record: domain.Record{ID: domain.Confirmed(2)}, Title: "now", StartTime: at(0)},
		{Record: domain.Record{ID: domain.Confirmed(3)}, Title: "soon", StartTime: at(5)},
		{Record: domain.Record{ID: domain.Confirmed(4)}, Title: "later", StartTime: at(24)},
	}})

	got := events.Between(testNow, testNow.Add(24*time.Hour))

	require.Len(t, got, 2)
	assert.Equal(t, "now", got[0].Title)
	assert.Equal(t, "soon", got[1].Title)
}

func TestRulesActive(t *testing.T) {
	b := bus.New(nil)
	seed := []domain.Rule{
		{Record: domain.Record{ID: domain.Confirmed(1)}, Name: "weekly", RatePattern: "w#1M#1T#09:00", IsActive: true},
		{Record: domain.Record{ID: domain.Confirmed(2)}, Name: "paused", RatePattern: "d#1", IsActive: false},
	}
	rules, detach := NewRules(newFakeRemote[domain.Rule, domain.RulePatch](seed...), b, nil, Options{})
	defer detach()
	bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: 1, Rules: seed})

	active := rules.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "weekly", active[0].Name)

	_, err := settle(t, rules.Update(context.Background(), domain.Confirmed(2), domain.RulePatch{IsActive: ptr(true)}))
	require.NoError(t, err)
	assert.Len(t, rules.Active(), 2)
}

func TestTaskAddScenario(t *testing.T) {
	b := bus.New(nil)
	remote := newFakeRemote[domain.Task, domain.TaskPatch]()
	remote.nextID = 41
	remote.hold()
	tasks, detach := NewTasks(remote, b, nil, Options{Clock: fixedClock})
	defer detach()
	bus.Publish(b, bus.UserDataLoaded, bus.UserDataLoadedEvent{UserID: 1, Tasks: []domain.Task{}})

	op := tasks.Add(context.Background(), domain.Task{Title: "Buy milk"})

	items := tasks.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].ID.IsPending())
	assert.Nil(t, items[0].CompletedAt)

	remote.release()
	created, err := settle(t, op)
	require.NoError(t, err)
	assert.Equal(t, []domain.Task{created}, tasks.Items())
	assert.Equal(t, domain.Confirmed(42), created.ID)
	assert.Equal(t, "Buy milk", created.Title)
}
