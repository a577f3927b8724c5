package preferences

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/repository"
)

type UseCase struct {
	prefs  repository.PreferencesRepository
	logger *zap.Logger
}

func New(prefs repository.PreferencesRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		prefs:  prefs,
		logger: logger,
	}
}

// Get returns the user's preferences, creating the defaults on first access.
func (uc *UseCase) Get(ctx context.Context, userID int64) (domain.Preferences, error) {
	prefs, err := uc.prefs.Get(ctx, userID)
	if err == nil {
		return *prefs, nil
	}
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return domain.Preferences{}, err
	}

	defaults := domain.DefaultPreferences(userID)
	if err := uc.prefs.Save(ctx, defaults); err != nil {
		return domain.Preferences{}, err
	}
	uc.logger.Debug("default preferences created", zap.Int64("user_id", userID))
	return defaults, nil
}

// Update applies patch to existing preferences. Unknown users yield NOT_FOUND.
func (uc *UseCase) Update(ctx context.Context, userID int64, patch domain.PreferencesPatch) (domain.Preferences, error) {
	prefs, err := uc.prefs.Get(ctx, userID)
	if err != nil {
		return domain.Preferences{}, err
	}
	if patch.IsEmpty() {
		return *prefs, nil
	}
	updated := patch.Apply(*prefs)
	if err := uc.prefs.Save(ctx, updated); err != nil {
		return domain.Preferences{}, err
	}
	return updated, nil
}
