package service

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

const minPasswordLength = 6

type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*backend.AuthResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.AuthResponse, error)
}

type AuthPersister interface {
	SaveAuth(ctx context.Context, token string, user domain.User)
	ClearAuth(ctx context.Context)
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	// Role is what the caller asked for; registration always creates a User.
	Role domain.Role
}

var errIncompleteAuth = errors.New("auth response missing token or user")

// AuthService tracks who is signed in. The admin flag is never stored: Status
// derives it from the user's role on every call.
type AuthService struct {
	backend AuthBackend
	persist AuthPersister
	log     *zap.Logger

	token string
	user  *domain.User
}

// NewAuthService starts anonymous; Restore loads a persisted session.
func NewAuthService(b AuthBackend, persist AuthPersister, log *zap.Logger) *AuthService {
	return &AuthService{
		backend: b,
		persist: persist,
		log:     log,
	}
}

func (s *AuthService) Status() domain.AuthStatus {
	if s.token == "" {
		return domain.Anonymous
	}
	return domain.StatusFor(s.user)
}

// Token implements backend.TokenSource.
func (s *AuthService) Token() string {
	return s.token
}

func (s *AuthService) User() (domain.User, bool) {
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Login replaces any current session on success and leaves it untouched on failure.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	res, err := s.backend.Login(ctx, email, password)
	if err == nil && (res == nil || res.Token == "") {
		err = errIncompleteAuth
	}
	if err != nil {
		s.log.Info("login failed", zap.String("email", email), zap.Error(err))
		return domain.User{}, actionError("login", MsgLoginFailed, err)
	}

	s.signIn(ctx, res.Token, res.User)
	s.log.Info("logged in", zap.String("user_id", res.User.ID), zap.Stringer("status", s.Status()))
	return res.User, nil
}

// Register validates the password locally and always signs up a regular user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	if in.Password != in.ConfirmPassword {
		return domain.User{}, domain.ErrPasswordMismatch
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, domain.ErrPasswordTooWeak
	}
	if in.Role != "" && in.Role != domain.RoleUser {
		s.log.Warn("ignoring requested role on registration", zap.String("role", string(in.Role)))
	}

	res, err := s.backend.Register(ctx, backend.RegisterRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     string(domain.RoleUser),
	})
	if err == nil && (res == nil || res.Token == "") {
		err = errIncompleteAuth
	}
	if err != nil {
		s.log.Info("registration failed", zap.String("email", in.Email), zap.Error(err))
		return domain.User{}, actionError("register", MsgRegisterFailed, err)
	}

	user := res.User
	user.Role = domain.RoleUser
	s.signIn(ctx, res.Token, user)
	s.log.Info("registered", zap.String("user_id", user.ID))
	return user, nil
}

// Logout forgets the session. It never fails.
func (s *AuthService) Logout(ctx context.Context) {
	s.token = ""
	s.user = nil
	s.persist.ClearAuth(ctx)
}

// Restore adopts a persisted session without contacting the backend.
func (s *AuthService) Restore(sess domain.Session) {
	if sess.Token == "" || sess.User == nil {
		s.token, s.user = "", nil
		return
	}
	u := *sess.User
	s.token = sess.Token
	s.user = &u
}

func (s *AuthService) signIn(ctx context.Context, token string, user domain.User) {
	s.token = token
	s.user = &user
	s.persist.SaveAuth(ctx, token, user)
}
