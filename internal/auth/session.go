package auth

import (
	"context"
	"errors"

	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sessionOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "imagehost_session_outcomes_total",
		Help: "Cookie session resolutions by result",
	},
	[]string{"result"},
)

// SessionState 会话解析结果
type SessionState int

const (
	// Anonymous 未认证
	Anonymous SessionState = iota
	// Authenticated 已认证
	Authenticated
)

// Outcome 一次会话解析的结果
// Rotated 非空时需要写回新的 cookie，ClearCookies 为 true 时需要删除两个 cookie
type Outcome struct {
	State        SessionState
	User         *models.User
	Token        string
	Rotated      *TokenPair
	ClearCookies bool
}

// SessionAuthenticator 根据 access/refresh cookie 解析身份
type SessionAuthenticator struct {
	jwt   *JWTService
	users *UserLookup
}

// NewSessionAuthenticator 创建会话认证器
func NewSessionAuthenticator(jwtService *JWTService, users *UserLookup) *SessionAuthenticator {
	return &SessionAuthenticator{jwt: jwtService, users: users}
}

// Authenticate 解析会话，所有令牌错误都降级为匿名，不向上返回
func (a *SessionAuthenticator) Authenticate(ctx context.Context, access, refresh string) Outcome {
	if access == "" && refresh == "" {
		sessionOutcomes.WithLabelValues("anonymous").Inc()
		return Outcome{State: Anonymous}
	}

	if access != "" {
		if claims, err := a.jwt.ParseToken(access, TokenTypeAccess); err == nil {
			user, err := a.lookup(ctx, claims.UserID)
			if err != nil {
				return a.lookupFailed(err)
			}
			sessionOutcomes.WithLabelValues("authenticated").Inc()
			return Outcome{State: Authenticated, User: user, Token: access}
		}
	}

	// access 缺失或无效，尝试刷新
	if refresh == "" {
		return a.cleared()
	}
	claims, err := a.jwt.ParseToken(refresh, TokenTypeRefresh)
	if err != nil {
		return a.cleared()
	}
	user, err := a.lookup(ctx, claims.UserID)
	if err != nil {
		return a.lookupFailed(err)
	}

	pair, err := a.jwt.GenerateTokens(user.ID)
	if err != nil {
		utils.Logger().Error().Err(err).Msg("[Auth] failed to rotate session tokens")
		return a.unavailable()
	}

	sessionOutcomes.WithLabelValues("rotated").Inc()
	utils.LogIfDevf("[Auth] rotated session tokens for user %d", user.ID)
	return Outcome{State: Authenticated, User: user, Token: pair.AccessToken, Rotated: pair}
}

func (a *SessionAuthenticator) lookup(ctx context.Context, id uint) (*models.User, error) {
	user, err := a.users.FindActive(ctx, id)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		utils.Logger().Error().Err(err).Uint("user_id", id).Msg("[Auth] user lookup failed")
	}
	return user, err
}

func (a *SessionAuthenticator) cleared() Outcome {
	sessionOutcomes.WithLabelValues("cleared").Inc()
	return Outcome{State: Anonymous, ClearCookies: true}
}

// lookupFailed 只有用户确实不存在时才清除 cookie，存储故障保留会话
func (a *SessionAuthenticator) lookupFailed(err error) Outcome {
	if errors.Is(err, ErrUserNotFound) {
		return a.cleared()
	}
	return a.unavailable()
}

func (a *SessionAuthenticator) unavailable() Outcome {
	sessionOutcomes.WithLabelValues("unavailable").Inc()
	return Outcome{State: Anonymous}
}

// ResolveBearer 校验 Authorization 头中的访问令牌并加载用户
func (a *SessionAuthenticator) ResolveBearer(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.jwt.ParseToken(token, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	user, err := a.lookup(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
