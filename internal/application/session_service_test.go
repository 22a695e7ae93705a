package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/auth"
)

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*session.User
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*session.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFoundError("User", id.String())
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*session.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, apperror.NewNotFoundError("User", email)
}

func (m *memUsers) Save(_ context.Context, u *session.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID()] = u
	return nil
}

func (m *memUsers) Update(ctx context.Context, u *session.User) error {
	return m.Save(ctx, u)
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func (m *memSessions) FindByToken(_ context.Context, token string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[token]; ok {
		return s, nil
	}
	return nil, apperror.NewNotFoundError("Session", "token")
}

func (m *memSessions) Save(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token()] = s
	return nil
}

func (m *memSessions) DeleteByToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memSessions) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, s := range m.sessions {
		if s.IsExpired(before) {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]session.Current
	gets    int
}

func (m *memCache) Get(_ context.Context, token string) (*session.Current, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if c, ok := m.entries[token]; ok {
		c.Token = ""
		return &c, nil
	}
	return nil, nil
}

func (m *memCache) Set(_ context.Context, cur *session.Current, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[cur.Token] = *cur
	return nil
}

func (m *memCache) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, token)
	return nil
}

func newSessionStack(admins ...string) (*SessionService, *memSessions, *memCache) {
	users := &memUsers{users: map[uuid.UUID]*session.User{}}
	sessions := &memSessions{sessions: map[string]*session.Session{}}
	cache := &memCache{entries: map[string]session.Current{}}
	jwtManager := auth.NewJWTManager("test-secret", "storefront", 15*time.Minute)
	svc := NewSessionService(users, sessions, cache, jwtManager, 7*24*time.Hour, admins, zap.NewNop())
	return svc, sessions, cache
}

var browser = ClientInfo{IPAddress: "127.0.0.1", UserAgent: "go-test"}

func TestSignUp_OpensSession(t *testing.T) {
	svc, sessions, _ := newSessionStack()

	res, err := svc.SignUp(context.Background(), SignUpRequest{Name: "Jane", Email: "Jane@Example.com", Password: "correct-horse"}, browser)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "jane@example.com", res.Session.Email)
	assert.Equal(t, session.RoleCustomer, res.Session.Role)
	assert.Len(t, sessions.sessions, 1)
}

func TestSignUp_Rules(t *testing.T) {
	svc, _, _ := newSessionStack()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "short"}, browser)
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")

	_, err = svc.SignUp(ctx, SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "long-enough"}, browser)
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, SignUpRequest{Name: "Jane", Email: "JANE@example.com", Password: "long-enough"}, browser)
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestSignUp_AdminEmailsPromoted(t *testing.T) {
	svc, _, _ := newSessionStack("ops@urbandrives.com")

	res, err := svc.SignUp(context.Background(), SignUpRequest{Name: "Ops", Email: "ops@urbandrives.com", Password: "long-enough"}, browser)
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, res.Session.Role)
}

func TestSignIn(t *testing.T) {
	svc, _, _ := newSessionStack()
	ctx := context.Background()
	_, err := svc.SignUp(ctx, SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "long-enough"}, browser)
	require.NoError(t, err)

	res, err := svc.SignIn(ctx, SignInRequest{Email: "jane@example.com", Password: "long-enough"}, browser)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	for _, req := range []SignInRequest{
		{Email: "jane@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "long-enough"},
	} {
		_, err := svc.SignIn(ctx, req, browser)
		var unauth *apperror.UnauthorizedError
		assert.ErrorAs(t, err, &unauth)
	}
}

func TestResolve_CacheAndSignOut(t *testing.T) {
	svc, _, cache := newSessionStack()
	ctx := context.Background()
	res, err := svc.SignUp(ctx, SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "long-enough"}, browser)
	require.NoError(t, err)

	cur, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Token, cur.Token, "token restored on cache hit")
	assert.Equal(t, "jane@example.com", cur.Email)

	// A cache miss falls back to the session store.
	require.NoError(t, cache.Delete(ctx, res.Token))
	cur, err = svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.UserID, cur.UserID)

	require.NoError(t, svc.SignOut(ctx, res.Token))
	_, err = svc.Resolve(ctx, res.Token)
	var unauth *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &unauth)
}

func TestResolve_ExpiredSession(t *testing.T) {
	svc, sessions, _ := newSessionStack()
	ctx := context.Background()
	res, err := svc.SignUp(ctx, SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "long-enough"}, browser)
	require.NoError(t, err)
	require.NoError(t, svc.cache.Delete(ctx, res.Token))

	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = svc.Resolve(ctx, res.Token)
	var unauth *apperror.UnauthorizedError
	require.ErrorAs(t, err, &unauth)
	assert.Empty(t, sessions.sessions)
}

func TestToken_MintsVerifiableJWT(t *testing.T) {
	svc, _, _ := newSessionStack()
	ctx := context.Background()
	res, err := svc.SignUp(ctx, SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "long-enough"}, browser)
	require.NoError(t, err)

	dto, err := svc.Token(ctx, res.Session)
	require.NoError(t, err)

	claims, err := svc.tokens.Validate(dto.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.UserID.String(), claims.UserID)
	assert.Equal(t, "customer", claims.Role)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), dto.ExpiresAt, 5*time.Second)

	_, err = svc.Token(ctx, nil)
	assert.Error(t, err)
}

func TestPurgeExpired(t *testing.T) {
	svc, sessions, _ := newSessionStack()
	ctx := context.Background()
	_, err := svc.SignUp(ctx, SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "long-enough"}, browser)
	require.NoError(t, err)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc.now = func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }
	n, err = svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Empty(t, sessions.sessions)
}

func TestSignIn_PromotesListedAdmin(t *testing.T) {
	users := &memUsers{users: map[uuid.UUID]*session.User{}}
	ctx := context.Background()
	jwtManager := auth.NewJWTManager("test-secret", "storefront", 15*time.Minute)

	before := NewSessionService(users, &memSessions{sessions: map[string]*session.Session{}},
		&memCache{entries: map[string]session.Current{}}, jwtManager, time.Hour, nil, zap.NewNop())
	res, err := before.SignUp(ctx, SignUpRequest{Name: "Ops", Email: "ops@urbandrives.com", Password: "long-enough"}, browser)
	require.NoError(t, err)
	require.Equal(t, session.RoleCustomer, res.Session.Role)

	after := NewSessionService(users, &memSessions{sessions: map[string]*session.Session{}},
		&memCache{entries: map[string]session.Current{}}, jwtManager, time.Hour, []string{"ops@urbandrives.com"}, zap.NewNop())
	res, err = after.SignIn(ctx, SignInRequest{Email: "ops@urbandrives.com", Password: "long-enough"}, browser)
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, res.Session.Role)

	stored, err := users.FindByID(ctx, res.Session.UserID)
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, stored.Role())
}

func TestSignOut_RunsHooks(t *testing.T) {
	svc, _, _ := newSessionStack()
	ctx := context.Background()
	res, err := svc.SignUp(ctx, SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "long-enough"}, browser)
	require.NoError(t, err)

	var forgotten []string
	svc.OnSignOut(func(token string) { forgotten = append(forgotten, token) })

	require.NoError(t, svc.SignOut(ctx, res.Token))
	assert.Equal(t, []string{res.Token}, forgotten)

	require.NoError(t, svc.SignOut(ctx, ""))
	assert.Len(t, forgotten, 1)
}
