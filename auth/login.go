package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/errors"
	"github.com/kimm528/ringfitmanager/fitlife"
)

var ErrCredentialsRequired = fmt.Errorf("%w: id and password are required", errors.BadRequest)

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     Auth      `json:"admin"`
}

type LoginService interface {
	Login(ctx context.Context, id, password string) (*Session, error)
}

type LoginParams struct {
	fx.In

	Fitlife fitlife.Client
	Tokens  *TokenManager
	Logger  *zap.SugaredLogger
}

func NewLoginService(p LoginParams) LoginService {
	return &loginService{
		fitlife: p.Fitlife,
		tokens:  p.Tokens,
		logger:  p.Logger,
	}
}

type loginService struct {
	fitlife fitlife.Client
	tokens  *TokenManager
	logger  *zap.SugaredLogger
}

// Login checks the credentials with the vendor and issues our own session
// token. The vendor token is not kept.
func (l *loginService) Login(ctx context.Context, id, password string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	result, err := l.fitlife.Login(ctx, id, password)
	if err != nil {
		l.logger.Warnw("administrator login failed", "id", id, zap.Error(err))
		return nil, err
	}

	admin := Auth{
		SubjectId: result.Admin.Id,
		Name:      result.Admin.Name,
		Role:      RoleFromVendor(result.Admin.Role),
	}
	if admin.SubjectId == "" {
		admin.SubjectId = id
	}

	token, expiresAt, err := l.tokens.Issue(admin)
	if err != nil {
		return nil, err
	}
	admin.ExpiresAt = expiresAt

	l.logger.Infow("administrator logged in", "id", admin.SubjectId, "role", admin.Role)
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Admin:     admin,
	}, nil
}
