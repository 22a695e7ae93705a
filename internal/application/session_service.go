package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/auth"
)

const maxPasswordBytes = 72

var errInvalidCredentials = apperror.NewUnauthorizedError("Invalid email or password")

// SignUpRequest holds the sign-up form.
type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignInRequest holds the sign-in form.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ClientInfo describes where a session was opened from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthResult is returned when a session is opened.
type AuthResult struct {
	Token   string           `json:"-"`
	Session *session.Current `json:"session"`
}

// TokenDTO is the body of the token endpoint.
type TokenDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionService manages accounts, sessions and bearer tokens.
type SessionService struct {
	users       session.UserRepository
	sessions    session.SessionRepository
	cache       session.Cache
	tokens      *auth.JWTManager
	ttl         time.Duration
	adminEmails map[string]bool
	logger      *zap.Logger
	now         func() time.Time
	onSignOut   []func(token string)
}

// NewSessionService creates a new SessionService. Accounts created with one
// of adminEmails are promoted to admin.
func NewSessionService(
	users session.UserRepository,
	sessions session.SessionRepository,
	cache session.Cache,
	tokens *auth.JWTManager,
	ttl time.Duration,
	adminEmails []string,
	logger *zap.Logger,
) *SessionService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = session.NormalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &SessionService{
		users:       users,
		sessions:    sessions,
		cache:       cache,
		tokens:      tokens,
		ttl:         ttl,
		adminEmails: admins,
		logger:      logger,
		now:         time.Now,
	}
}

// OnSignOut registers fn to run after a session is signed out.
func (s *SessionService) OnSignOut(fn func(token string)) {
	s.onSignOut = append(s.onSignOut, fn)
}

// SignUp creates an account and opens a session for it.
func (s *SessionService) SignUp(ctx context.Context, req SignUpRequest, client ClientInfo) (*AuthResult, error) {
	if len(req.Password) < session.MinPasswordLength {
		return nil, apperror.NewFieldValidationError(map[string]string{"password": "must be at least 8 characters"})
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, apperror.NewFieldValidationError(map[string]string{"password": "is too long"})
	}

	_, err := s.users.FindByEmail(ctx, session.NormalizeEmail(req.Email))
	switch {
	case err == nil:
		return nil, apperror.NewConflictError("An account with this email already exists")
	case !apperror.IsNotFound(err):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := session.NewUser(req.Name, req.Email, string(hash))
	if err != nil {
		return nil, err
	}
	if s.adminEmails[user.Email()] {
		user.Promote()
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID().String()), zap.String("role", string(user.Role())))
	return s.open(ctx, user, client)
}

// SignIn verifies credentials and opens a session.
func (s *SessionService) SignIn(ctx context.Context, req SignInRequest, client ClientInfo) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, session.NormalizeEmail(req.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if s.adminEmails[user.Email()] && user.Role() != session.RoleAdmin {
		user.Promote()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user promoted to admin", zap.String("user_id", user.ID().String()))
	}
	return s.open(ctx, user, client)
}

// SignOut ends the session identified by token.
func (s *SessionService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.cache.Delete(ctx, token); err != nil {
		s.logger.Warn("failed to evict session from cache", zap.Error(err))
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return err
	}
	for _, fn := range s.onSignOut {
		fn(token)
	}
	return nil
}

// Resolve returns the session for token, or an UnauthorizedError.
func (s *SessionService) Resolve(ctx context.Context, token string) (*session.Current, error) {
	now := s.now()

	cached, err := s.cache.Get(ctx, token)
	if err != nil {
		s.logger.Warn("session cache unavailable", zap.Error(err))
	}
	if cached != nil && now.Before(cached.ExpiresAt) {
		cached.Token = token
		return cached, nil
	}

	sess, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorizedError("Your session has expired, please sign in again")
		}
		return nil, err
	}
	if sess.IsExpired(now) {
		if err := s.sessions.DeleteByToken(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, apperror.NewUnauthorizedError("Your session has expired, please sign in again")
	}

	user, err := s.users.FindByID(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}

	cur := session.NewCurrent(sess, user)
	if err := s.cache.Set(ctx, cur, sess.ExpiresAt().Sub(now)); err != nil {
		s.logger.Warn("failed to cache session", zap.Error(err))
	}
	return cur, nil
}

// IssueToken mints a bearer token for the backend on behalf of cur.
func (s *SessionService) IssueToken(ctx context.Context, cur *session.Current) (string, time.Time, error) {
	if cur == nil {
		return "", time.Time{}, apperror.NewUnauthorizedError("Please sign in to continue")
	}
	return s.tokens.Generate(cur.UserID, cur.Email, cur.Name, string(cur.Role))
}

// Token returns the token endpoint's response body for cur.
func (s *SessionService) Token(ctx context.Context, cur *session.Current) (*TokenDTO, error) {
	token, exp, err := s.IssueToken(ctx, cur)
	if err != nil {
		return nil, err
	}
	return &TokenDTO{Token: token, ExpiresAt: exp}, nil
}

// PurgeExpired removes sessions that expired before now.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", zap.Int64("count", n))
	}
	return n, nil
}

func (s *SessionService) open(ctx context.Context, user *session.User, client ClientInfo) (*AuthResult, error) {
	sess, err := session.NewSession(user.ID(), s.ttl, client.IPAddress, truncate(client.UserAgent, 512))
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	cur := session.NewCurrent(sess, user)
	if err := s.cache.Set(ctx, cur, s.ttl); err != nil {
		s.logger.Warn("failed to cache session", zap.Error(err))
	}
	return &AuthResult{Token: sess.Token(), Session: cur}, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}
