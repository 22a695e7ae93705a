package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/metrics"
)

// TokenSource yields a bearer token for one privileged call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// HTTPTokenSource asks the storefront's own token endpoint for a new token
// on every call, presenting the caller's session.
type HTTPTokenSource struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPTokenSource creates a source that GETs url.
func NewHTTPTokenSource(url string, httpClient *http.Client, logger *zap.Logger) *HTTPTokenSource {
	return &HTTPTokenSource{url: url, httpClient: httpClient, logger: logger}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Token fetches a fresh token. A missing session is an UnauthorizedError;
// every other failure is a TokenError.
func (s *HTTPTokenSource) Token(ctx context.Context) (string, error) {
	cur, ok := session.FromContext(ctx)
	if !ok {
		metrics.TokenFetches.WithLabelValues("no_session").Inc()
		return "", apperror.NewUnauthorizedError("Please sign in to continue")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", apperror.NewTokenError(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+cur.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.TokenFetches.WithLabelValues("error").Inc()
		return "", apperror.NewTokenError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TokenFetches.WithLabelValues("rejected").Inc()
		s.logger.Warn("token endpoint refused", zap.Int("status", resp.StatusCode))
		return "", apperror.NewTokenError(fmt.Errorf("token endpoint returned %d", resp.StatusCode))
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.TokenFetches.WithLabelValues("malformed").Inc()
		return "", apperror.NewTokenError(fmt.Errorf("failed to decode token response: %w", err))
	}
	if body.Token == "" {
		metrics.TokenFetches.WithLabelValues("malformed").Inc()
		return "", apperror.NewTokenError(errors.New("token endpoint returned an empty token"))
	}

	metrics.TokenFetches.WithLabelValues("ok").Inc()
	return body.Token, nil
}

// TokenIssuer mints a token for a session without a network hop.
type TokenIssuer interface {
	IssueToken(ctx context.Context, cur *session.Current) (string, time.Time, error)
}

// IssuerTokenSource obtains tokens in-process from the session service. It is
// used when the storefront is both token issuer and backend client.
type IssuerTokenSource struct {
	issuer TokenIssuer
}

// NewIssuerTokenSource creates an IssuerTokenSource.
func NewIssuerTokenSource(issuer TokenIssuer) *IssuerTokenSource {
	return &IssuerTokenSource{issuer: issuer}
}

// Token mints a token for the session carried by ctx.
func (s *IssuerTokenSource) Token(ctx context.Context) (string, error) {
	cur, ok := session.FromContext(ctx)
	if !ok {
		metrics.TokenFetches.WithLabelValues("no_session").Inc()
		return "", apperror.NewUnauthorizedError("Please sign in to continue")
	}
	token, _, err := s.issuer.IssueToken(ctx, cur)
	if err != nil {
		metrics.TokenFetches.WithLabelValues("error").Inc()
		return "", apperror.NewTokenError(err)
	}
	metrics.TokenFetches.WithLabelValues("ok").Inc()
	return token, nil
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// CachingTokenSource reuses a session's token until shortly before it expires.
// Tokens without an exp claim are never cached.
type CachingTokenSource struct {
	source TokenSource
	margin time.Duration
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]cachedToken
	lastSweep time.Time
}

const cacheSweepInterval = time.Minute

// NewCachingTokenSource wraps source. margin is subtracted from each token's expiry.
func NewCachingTokenSource(source TokenSource, margin time.Duration) *CachingTokenSource {
	return &CachingTokenSource{
		source:  source,
		margin:  margin,
		now:     time.Now,
		entries: make(map[string]cachedToken),
	}
}

// Token returns a cached token for the caller's session, or fetches one.
func (c *CachingTokenSource) Token(ctx context.Context) (string, error) {
	cur, ok := session.FromContext(ctx)
	if !ok {
		return c.source.Token(ctx)
	}

	now := c.now()
	c.mu.Lock()
	entry, hit := c.entries[cur.Token]
	if hit && now.Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.value, nil
	}
	delete(c.entries, cur.Token)
	c.mu.Unlock()

	token, err := c.source.Token(ctx)
	if err != nil {
		return "", err
	}

	if exp, ok := tokenExpiry(token); ok {
		if usableUntil := exp.Add(-c.margin); now.Before(usableUntil) {
			c.mu.Lock()
			c.sweepLocked(now)
			c.entries[cur.Token] = cachedToken{value: token, expiresAt: usableUntil}
			c.mu.Unlock()
		}
	}
	return token, nil
}

// Forget drops any cached token for the session token.
func (c *CachingTokenSource) Forget(sessionToken string) {
	c.mu.Lock()
	delete(c.entries, sessionToken)
	c.mu.Unlock()
}

// sweepLocked drops expired entries at most once per cacheSweepInterval.
func (c *CachingTokenSource) sweepLocked(now time.Time) {
	if now.Sub(c.lastSweep) < cacheSweepInterval {
		return
	}
	c.lastSweep = now
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
