package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 令牌类型
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken 令牌无法解析、签名错误、已过期或类型不符
var ErrInvalidToken = errors.New("token is invalid or expired")

// TokenPair 包含访问令牌和刷新令牌
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// TokenClaims JWT 令牌声明
type TokenClaims struct {
	UserID uint   `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenConfig 保存 JWT 配置
type TokenConfig struct {
	Secret           []byte
	ExpiresIn        time.Duration
	RefreshExpiresIn time.Duration
}

// JWTService JWT Token 服务，访问令牌与刷新令牌都是 HS256 JWT
type JWTService struct {
	config TokenConfig
	now    func() time.Time
}

// NewJWTService 创建新的 JWT 服务
func NewJWTService(config TokenConfig) (*JWTService, error) {
	if len(config.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters long, got %d", len(config.Secret))
	}
	if config.ExpiresIn <= 0 || config.RefreshExpiresIn <= 0 {
		return nil, errors.New("JWT token lifetimes must be positive")
	}
	return &JWTService{config: config, now: time.Now}, nil
}

// Config 返回当前 JWT 配置
func (s *JWTService) Config() TokenConfig {
	return s.config
}

// GenerateTokens 为用户签发一对新令牌，每次都生成新的 jti
func (s *JWTService) GenerateTokens(userID uint) (*TokenPair, error) {
	now := s.now()

	accessToken, accessExpiry, err := s.sign(userID, TokenTypeAccess, now, s.config.ExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, refreshExpiry, err := s.sign(userID, TokenTypeRefresh, now, s.config.RefreshExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:        accessToken,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: refreshExpiry,
	}, nil
}

func (s *JWTService) sign(userID uint, tokenType string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiry := now.Add(ttl)
	claims := TokenClaims{
		UserID: userID,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// ParseToken 解析并验证令牌，tokenType 不匹配同样视为无效
func (s *JWTService) ParseToken(tokenString, tokenType string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
