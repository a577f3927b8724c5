package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/repository/memory"
)

func newTasks() *UseCase[domain.Task, domain.TaskPatch, *domain.Task] {
	return New[domain.Task, domain.TaskPatch](domain.DomainTasks, memory.NewRecords[domain.Task]("Task not found"), nil)
}

func TestCreateAssignsIdentity(t *testing.T) {
	uc := newTasks()
	ctx := context.Background()

	_, err := uc.Create(ctx, domain.Task{Title: "orphan"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	created, err := uc.Create(ctx, domain.Task{Record: domain.Record{ID: domain.Confirmed(99), UserID: 1}, Title: "a"})
	require.NoError(t, err)
	assert.Equal(t, domain.Confirmed(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestUpdateKeepsIdentityFields(t *testing.T) {
	uc := newTasks()
	ctx := context.Background()
	created, err := uc.Create(ctx, domain.Task{Record: domain.Record{UserID: 1}, Title: "a"})
	require.NoError(t, err)
	id, _ := created.ID.Server()

	updated, err := uc.Update(ctx, 1, id, domain.TitlePatch("b"))
	require.NoError(t, err)
	assert.Equal(t, "b", updated.Title)
	assert.Equal(t, created.Record, updated.Record)

	_, err = uc.Update(ctx, 2, id, domain.TitlePatch("c"))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	items, err := uc.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.Task{updated}, items)

	require.NoError(t, uc.Delete(ctx, 1, id))
	items, err = uc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}
