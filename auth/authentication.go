package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kimm528/ringfitmanager/errors"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"

	AuthorizationHeaderKey = "Authorization"
	bearerPrefix           = "Bearer "
)

var (
	ErrUnauthenticated          = fmt.Errorf("%w: session token is invalid", errors.Unauthorized)
	AuthContextKey              = AuthKey("auth")
	DefaultCacheSize            = 1000            // Cache up to 1000 tokens
	DefaultCacheEntryExpiration = 5 * time.Minute // Cache tokens for 5 minutes
)

type AuthKey string

// Auth is the authenticated administrator of the current request.
type Auth struct {
	SubjectId string    `json:"subjectId"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"-"`
}

func IsAdmin(a *Auth) bool {
	return a != nil && a.Role == RoleAdmin
}

// RoleFromVendor maps the vendor's administrator roles to ours. Anything
// that is not an administrator is read-only.
func RoleFromVendor(role string) string {
	switch strings.ToLower(role) {
	case "admin", "superadmin", "manager":
		return RoleAdmin
	default:
		return RoleViewer
	}
}

type Authenticator interface {
	ValidateAndSetAuthData(token string, ec echo.Context) (bool, error)
}

type AuthMiddlewareOpts struct {
	Skipper middleware.Skipper
}

func NewAuthMiddleware(authenticator Authenticator, opts AuthMiddlewareOpts) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Allow skipping authentication for certain routes (e.g. readiness probe)
			if opts.Skipper != nil {
				if opts.Skipper(c) {
					return next(c)
				}
			}

			header := c.Request().Header.Get(AuthorizationHeaderKey)
			if !strings.HasPrefix(header, bearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "bearer token is missing")
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

			valid, err := authenticator.ValidateAndSetAuthData(token, c)
			if err != nil {
				return &echo.HTTPError{
					Code:     http.StatusUnauthorized,
					Message:  "session token is invalid",
					Internal: err,
				}
			} else if valid {
				return next(c)
			}
			return echo.ErrUnauthorized
		}
	}
}

// NewAuthenticator returns a token authenticator that caches validated sessions
func NewAuthenticator(tokens *TokenManager) (Authenticator, error) {
	return NewCachingAuthenticator(
		DefaultCacheSize,
		DefaultCacheEntryExpiration,
		NewTokenAuthenticator(tokens),
		func(a *Auth) bool { return a != nil },
	)
}

type TokenAuthenticator struct {
	tokens *TokenManager
}

var _ Authenticator = &TokenAuthenticator{}

func NewTokenAuthenticator(tokens *TokenManager) Authenticator {
	return &TokenAuthenticator{tokens: tokens}
}

func (t *TokenAuthenticator) ValidateAndSetAuthData(token string, ec echo.Context) (bool, error) {
	auth, err := t.tokens.Validate(token)
	if err != nil {
		return false, err
	}
	SetAuthData(ec, auth)
	return true, nil
}

func GetAuthData(ctx context.Context) *Auth {
	if auth, ok := ctx.Value(AuthContextKey).(*Auth); ok {
		return auth
	}

	return nil
}

func SetAuthData(ec echo.Context, auth *Auth) {
	ec.SetRequest(ec.Request().WithContext(WithAuthData(ec.Request().Context(), auth)))
}

func WithAuthData(ctx context.Context, auth *Auth) context.Context {
	return context.WithValue(ctx, AuthContextKey, auth)
}

type CacheEntry struct {
	token  string
	auth   *Auth
	expiry time.Time
}

func (c CacheEntry) IsExpired(now time.Time) bool {
	return now.After(c.expiry)
}

type CachingAuthenticator struct {
	delegate    Authenticator
	expiration  time.Duration
	lru         *simplelru.LRU
	mu          *sync.Mutex
	shouldCache func(*Auth) bool
	now         func() time.Time
}

var _ Authenticator = &CachingAuthenticator{}

func NewCachingAuthenticator(size int, expiration time.Duration, delegate Authenticator, shouldCache func(*Auth) bool) (*CachingAuthenticator, error) {
	var onEvict simplelru.EvictCallback
	lru, err := simplelru.NewLRU(size, onEvict)
	if err != nil {
		return nil, err
	}

	return &CachingAuthenticator{
		delegate:    delegate,
		expiration:  expiration,
		lru:         lru,
		mu:          &sync.Mutex{},
		shouldCache: shouldCache,
		now:         time.Now,
	}, nil
}

func (c *CachingAuthenticator) ValidateAndSetAuthData(token string, ec echo.Context) (bool, error) {
	entry := c.getCachedEntry(token)
	if entry != nil {
		SetAuthData(ec, entry.auth)
		return true, nil
	}

	res, err := c.delegate.ValidateAndSetAuthData(token, ec)
	if err != nil || !res {
		return res, err
	}

	auth := GetAuthData(ec.Request().Context())
	if c.shouldCache(auth) {
		expiry := c.now().Add(c.expiration)
		// A cached session never outlives its token
		if !auth.ExpiresAt.IsZero() && auth.ExpiresAt.Before(expiry) {
			expiry = auth.ExpiresAt
		}
		c.setCacheEntry(CacheEntry{
			token:  token,
			auth:   auth,
			expiry: expiry,
		})
	}

	return res, nil
}

func (c *CachingAuthenticator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

func (c *CachingAuthenticator) getCachedEntry(token string) *CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lru.Get(token); ok {
		entry := e.(CacheEntry)
		if entry.IsExpired(c.now()) {
			c.lru.Remove(token)
			return nil
		}
		return &entry
	}

	return nil
}

func (c *CachingAuthenticator) setCacheEntry(entry CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.lru.Add(entry.token, entry)
}
