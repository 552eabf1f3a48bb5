package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/kimm528/ringfitmanager/config"
)

const TokenIssuer = "ringfitmanager"

var ErrSecretMissing = fmt.Errorf("jwt secret is missing")

type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// TokenManager issues and validates HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(cfg *config.Config) (*TokenManager, error) {
	return NewTokenManagerWithClock(cfg.JwtSecret, cfg.SessionTTL, time.Now)
}

func NewTokenManagerWithClock(secret string, ttl time.Duration, now func() time.Time) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %v", ttl)
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}, nil
}

// Issue signs a token for the administrator and returns its expiry.
func (t *TokenManager) Issue(auth Auth) (string, time.Time, error) {
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   auth.SubjectId,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name: auth.Name,
		Role: auth.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("unable to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (t *TokenManager) Validate(token string) (*Auth, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	// Claims are checked against the manager's clock
	if !claims.VerifyExpiresAt(t.now(), true) {
		return nil, fmt.Errorf("%w: token is expired", ErrUnauthenticated)
	}
	if !claims.VerifyIssuer(TokenIssuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token subject is missing", ErrUnauthenticated)
	}
	if claims.Role != RoleAdmin && claims.Role != RoleViewer {
		return nil, fmt.Errorf("%w: unknown role %q", ErrUnauthenticated, claims.Role)
	}

	return &Auth{
		SubjectId: claims.Subject,
		Name:      claims.Name,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
