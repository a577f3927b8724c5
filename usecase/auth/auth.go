package auth

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/repository"
)

var (
	ErrUsernameTaken      = domain.NewError(domain.ErrCodeInvalid, "Username already registered")
	ErrInvalidLogin       = domain.NewError(domain.ErrCodeUnauthorized, "Invalid username or password")
	ErrSessionNotValid    = domain.NewError(domain.ErrCodeUnauthorized, "Session is no longer valid")
	ErrCredentialsMissing = domain.NewError(domain.ErrCodeInvalid, "Username and password are required")
)

type UseCase struct {
	users  repository.UserRepository
	cost   int
	now    func() time.Time
	logger *zap.Logger
}

func New(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{
		users:  users,
		cost:   bcryptCost,
		now:    time.Now,
		logger: logger,
	}
}

func (uc *UseCase) Register(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return domain.Identity{}, ErrCredentialsMissing
	}
	if _, err := uc.users.GetByUsername(ctx, username); err == nil {
		return domain.Identity{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), uc.cost)
	if err != nil {
		return domain.Identity{}, domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	account := &repository.Account{
		Identity:     domain.Identity{Username: username},
		PasswordHash: hash,
		CreatedAt:    uc.now().UTC(),
	}
	if err := uc.users.Create(ctx, account); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			return domain.Identity{}, ErrUsernameTaken
		}
		return domain.Identity{}, err
	}
	uc.logger.Info("user registered", zap.Int64("user_id", account.ID))
	return account.Identity, nil
}

func (uc *UseCase) Login(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	account, err := uc.users.GetByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		return domain.Identity{}, ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(creds.Password)); err != nil {
		return domain.Identity{}, ErrInvalidLogin
	}
	return account.Identity, nil
}

// Me confirms that userID still names an account.
func (uc *UseCase) Me(ctx context.Context, userID int64) (domain.Identity, error) {
	if userID <= 0 {
		return domain.Identity{}, ErrSessionNotValid
	}
	account, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Identity{}, ErrSessionNotValid
	}
	return account.Identity, nil
}
