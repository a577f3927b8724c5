package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/repository"
)

// Records is an in-memory RecordRepository with sequential IDs.
type Records[T any, PT domain.Entity[T]] struct {
	notFound *domain.Error

	mu    sync.RWMutex
	seq   int64
	items map[int64]T
}

// NewRecords creates an empty repository. notFound is the message returned for
// unknown or foreign IDs, for example "Task not found".
func NewRecords[T any, PT domain.Entity[T]](notFound string) *Records[T, PT] {
	return &Records[T, PT]{
		notFound: domain.NewError(domain.ErrCodeNotFound, notFound),
		items:    make(map[int64]T),
	}
}

var _ repository.RecordRepository[domain.Task] = (*Records[domain.Task, *domain.Task])(nil)

func (r *Records[T, PT]) List(_ context.Context, userID int64) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0)
	for _, item := range r.items {
		if PT(&item).Meta().UserID == userID {
			out = append(out, item)
		}
	}
	slices.SortFunc(out, func(a, b T) int {
		ida, _ := PT(&a).Meta().ID.Server()
		idb, _ := PT(&b).Meta().ID.Server()
		return cmp.Compare(ida, idb)
	})
	return out, nil
}

func (r *Records[T, PT]) Get(_ context.Context, userID, id int64) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok || PT(&item).Meta().UserID != userID {
		var zero T
		return zero, r.notFound
	}
	return item, nil
}

func (r *Records[T, PT]) Create(_ context.Context, item T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	PT(&item).Meta().ID = domain.Confirmed(r.seq)
	r.items[r.seq] = item
	return item, nil
}

func (r *Records[T, PT]) Save(_ context.Context, item T) error {
	id, ok := PT(&item).Meta().ID.Server()
	if !ok {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[id]; !exists {
		return r.notFound
	}
	r.items[id] = item
	return nil
}

func (r *Records[T, PT]) Delete(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || PT(&item).Meta().UserID != userID {
		return r.notFound
	}
	delete(r.items, id)
	return nil
}
