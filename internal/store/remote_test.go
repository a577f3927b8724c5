package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fastygo/dialin/domain"
)

var testNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// fakeRemote plays the server for one domain. When gate is set every call
// blocks until a value is received from it, so tests can observe the
// optimistic state before the server answers. opGates and opErrs do the same
// for a single operation ("create", "update" or "delete").
type fakeRemote[T any, P domain.Patch[T], PT domain.Entity[T]] struct {
	gate    chan struct{}
	opGates map[string]chan struct{}

	mu      sync.Mutex
	err     error
	opErrs  map[string]error
	nextID  int64
	records map[int64]T
	created []T
	patches []P
	deleted []int64
}

func newFakeRemote[T any, P domain.Patch[T], PT domain.Entity[T]](seed ...T) *fakeRemote[T, P, PT] {
	f := &fakeRemote[T, P, PT]{records: make(map[int64]T)}
	for _, item := range seed {
		id, _ := PT(&item).Meta().ID.Server()
		f.records[id] = item
		f.nextID = max(f.nextID, id)
	}
	return f
}

func (f *fakeRemote[T, P, PT]) hold() {
	f.gate = make(chan struct{})
}

func (f *fakeRemote[T, P, PT]) release() {
	f.gate <- struct{}{}
}

func (f *fakeRemote[T, P, PT]) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// holdOp gates a single operation. Call it before starting mutations.
func (f *fakeRemote[T, P, PT]) holdOp(op string) {
	if f.opGates == nil {
		f.opGates = make(map[string]chan struct{})
	}
	f.opGates[op] = make(chan struct{})
}

func (f *fakeRemote[T, P, PT]) releaseOp(op string) {
	f.opGates[op] <- struct{}{}
}

func (f *fakeRemote[T, P, PT]) failOp(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opErrs == nil {
		f.opErrs = make(map[string]error)
	}
	f.opErrs[op] = err
}

// wait blocks on the gates for op. Callers must not hold mu.
func (f *fakeRemote[T, P, PT]) wait(op string) {
	if g, ok := f.opGates[op]; ok {
		<-g
	}
	if f.gate != nil {
		<-f.gate
	}
}

// failure returns the configured error for op. Callers hold mu.
func (f *fakeRemote[T, P, PT]) failure(op string) error {
	if err := f.opErrs[op]; err != nil {
		return err
	}
	return f.err
}

func (f *fakeRemote[T, P, PT]) Create(_ context.Context, item T) (T, error) {
	f.wait("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("create"); err != nil {
		var zero T
		return zero, err
	}
	f.created = append(f.created, item)
	f.nextID++
	meta := PT(&item).Meta()
	meta.ID = domain.Confirmed(f.nextID)
	meta.CreatedAt = domain.At(testNow.Add(time.Second))
	f.records[f.nextID] = item
	return item, nil
}

func (f *fakeRemote[T, P, PT]) Update(_ context.Context, _ int64, id int64, patch P) (T, error) {
	f.wait("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero T
	if err := f.failure("update"); err != nil {
		return zero, err
	}
	f.patches = append(f.patches, patch)
	current, ok := f.records[id]
	if !ok {
		return zero, domain.NewError(domain.ErrCodeNotFound, "not found")
	}
	current = patch.Apply(current)
	f.records[id] = current
	return current, nil
}

func (f *fakeRemote[T, P, PT]) Delete(_ context.Context, _ int64, id int64) error {
	f.wait("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("delete"); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	delete(f.records, id)
	return nil
}

func (f *fakeRemote[T, P, PT]) calls() (created int, patched int, deleted []int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created), len(f.patches), slices.Clone(f.deleted)
}
