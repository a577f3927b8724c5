package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/internal/bus"
)

// Tasks keeps completed_at consistent with is_completed on every write.
type Tasks struct {
	*Collection[domain.Task, domain.TaskPatch, *domain.Task]
}

func NewTasks(remote Remote[domain.Task, domain.TaskPatch], b *bus.Bus, logger *zap.Logger, opts Options) (*Tasks, func()) {
	c := NewCollection[domain.Task, domain.TaskPatch](domain.DomainTasks, remote, logger, opts)
	detach := c.Attach(b, func(ev bus.UserDataLoadedEvent) []domain.Task { return ev.Tasks })
	return &Tasks{Collection: c}, detach
}

func (t *Tasks) Add(ctx context.Context, draft domain.Task) *Op[domain.Task] {
	return t.Collection.Add(ctx, draft.Normalize(t.now()))
}

func (t *Tasks) Update(ctx context.Context, id domain.ID, patch domain.TaskPatch) *Op[domain.Task] {
	return t.Collection.Update(ctx, id, patch.WithCompletion(t.now()))
}

// SetCompleted toggles completion and stamps or clears completed_at.
func (t *Tasks) SetCompleted(ctx context.Context, id domain.ID, done bool) *Op[domain.Task] {
	return t.Update(ctx, id, domain.TaskPatch{IsCompleted: &done})
}

// ByCategory returns the tasks referencing categoryID; nil matches uncategorized tasks.
func (t *Tasks) ByCategory(categoryID *int64) []domain.Task {
	var out []domain.Task
	for _, task := range t.Items() {
		switch {
		case categoryID == nil && task.CategoryID == nil:
			out = append(out, task)
		case categoryID != nil && task.CategoryID != nil && *task.CategoryID == *categoryID:
			out = append(out, task)
		}
	}
	return out
}
