package session

import (
	"context"
	"errors"
	"time"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user/entity"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("forbidden")
)

// Users is what the session layer needs from the user domain.
type Users interface {
	AuthenticatePassword(ctx context.Context, email, password string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string
	Subject     string
	ExpiresAt   time.Time
}

// Service issues session tokens and resolves them back to users.
type Service struct {
	users      Users
	signer     *Signer
	adminEmail string
}

func NewService(users Users, signer *Signer, adminEmail string) *Service {
	return &Service{users: users, signer: signer, adminEmail: adminEmail}
}

// Login verifies credentials and mints a token whose subject is the account email.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.users.AuthenticatePassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, user.ErrBadCredentials) {
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, err
	}
	tok, exp, err := s.signer.Issue(u.Email)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: tok, Subject: u.Email, ExpiresAt: exp}, nil
}

// Resolve verifies token and re-fetches its user. Missing, invalid or expired
// tokens and unknown or inactive users all yield ErrNotAuthenticated.
func (s *Service) Resolve(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	email, err := s.signer.Subject(token)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, ErrNotAuthenticated
	}
	return u, nil
}

// Authorize checks u against the single administrator email.
func (s *Service) Authorize(u *entity.User) error {
	if u == nil {
		return ErrNotAuthenticated
	}
	if u.Email != s.adminEmail {
		return ErrForbidden
	}
	return nil
}
