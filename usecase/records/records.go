package records

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/repository"
)

// UseCase serves the CRUD endpoints of one entity domain.
type UseCase[T any, P domain.Patch[T], PT domain.Entity[T]] struct {
	domain  domain.Domain
	records repository.RecordRepository[T]
	now     func() time.Time
	logger  *zap.Logger
}

func New[T any, P domain.Patch[T], PT domain.Entity[T]](dom domain.Domain, records repository.RecordRepository[T], logger *zap.Logger) *UseCase[T, P, PT] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase[T, P, PT]{
		domain:  dom,
		records: records,
		now:     time.Now,
		logger:  logger.With(zap.String("domain", string(dom))),
	}
}

func (uc *UseCase[T, P, PT]) Domain() domain.Domain {
	return uc.domain
}

func (uc *UseCase[T, P, PT]) List(ctx context.Context, userID int64) ([]T, error) {
	return uc.records.List(ctx, userID)
}

// Create stores item under a fresh ID. Any client-supplied ID or timestamp is
// replaced.
func (uc *UseCase[T, P, PT]) Create(ctx context.Context, item T) (T, error) {
	meta := PT(&item).Meta()
	if meta.UserID <= 0 {
		var zero T
		return zero, domain.NewError(domain.ErrCodeInvalid, "user_id is required")
	}
	meta.ID = domain.ID{}
	meta.CreatedAt = domain.At(uc.now())

	created, err := uc.records.Create(ctx, item)
	if err != nil {
		return created, err
	}
	uc.logger.Debug("record created", zap.Stringer("id", PT(&created).Meta().ID))
	return created, nil
}

// Update merges patch into the stored record and returns the result.
func (uc *UseCase[T, P, PT]) Update(ctx context.Context, userID, id int64, patch P) (T, error) {
	current, err := uc.records.Get(ctx, userID, id)
	if err != nil {
		return current, err
	}
	updated := patch.Apply(current)
	// identity fields are not patchable
	*PT(&updated).Meta() = *PT(&current).Meta()
	if err := uc.records.Save(ctx, updated); err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

func (uc *UseCase[T, P, PT]) Delete(ctx context.Context, userID, id int64) error {
	return uc.records.Delete(ctx, userID, id)
}
