package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user/entity"
)

// Store is the persistence the service needs; *repo.UserRepo satisfies it.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, email, hashedPassword string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// UserService orchestrates authentication and the admin user lifecycle.
type UserService struct {
	repo   Store
	hasher PasswordHasher
	logger *zap.SugaredLogger
}

func NewUserService(r Store, hasher PasswordHasher, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{repo: r, hasher: hasher, logger: logger}
}

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrInvalidInput   = errors.New("email and password are required")
)

// AuthenticatePassword checks email and password. Unknown email, inactive
// account and wrong password all yield ErrBadCredentials.
func (s *UserService) AuthenticatePassword(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, ErrBadCredentials // avoid user enumeration
	}
	if !s.hasher.Verify(u.HashedPassword, password) {
		return nil, ErrBadCredentials
	}

	// upgrade digests produced with an older cost
	if s.hasher.NeedsRehash(u.HashedPassword) {
		if newHash, _, hErr := s.hasher.Hash(password); hErr == nil {
			if err := s.repo.UpdatePassword(ctx, u.ID, newHash); err != nil {
				s.logger.Warnw("rehash on login failed", "user_id", u.ID, "err", err)
			} else {
				u.HashedPassword = newHash
			}
		}
	}
	return u, nil
}

// FindByEmail returns the user for email or nil when absent.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.repo.List(ctx)
}

// CreateUser hashes password and inserts an active user.
func (s *UserService) CreateUser(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	hash, _, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return s.repo.Insert(ctx, email, hash)
}

// ChangePassword rehashes and stores a new password. Unknown ids are ignored.
func (s *UserService) ChangePassword(ctx context.Context, id int64, password string) error {
	if password == "" {
		return ErrInvalidInput
	}
	hash, _, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// ToggleActive flips is_active and returns the updated user.
func (s *UserService) ToggleActive(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	u.IsActive = !u.IsActive
	if err := s.repo.SetActive(ctx, id, u.IsActive); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user. Deleting an unknown id is a no-op.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// SeedAdmin creates the administrator account when the table is empty.
// It reports whether a row was inserted.
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, email, password); err != nil {
		return false, err
	}
	return true, nil
}
