package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/database/repo/accounts"
	cryptopackage "github.com/anoixa/imagehost/utils/crypto"
)

// ErrInvalidCredentials 邮箱或密码错误
var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginResult 登录结果
type LoginResult struct {
	User   *models.User
	Tokens *TokenPair
}

// LoginService 登录服务
type LoginService struct {
	accountsRepo *accounts.Repository
	jwtService   *JWTService
}

// NewLoginService 创建新的登录服务
func NewLoginService(accountsRepo *accounts.Repository, jwtService *JWTService) *LoginService {
	return &LoginService{
		accountsRepo: accountsRepo,
		jwtService:   jwtService,
	}
}

// ValidateCredentials 验证用户凭据，停用用户无法登录
func (s *LoginService) ValidateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.accountsRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	ok, err := cryptopackage.VerifyPassword(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("password comparison failed: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login 校验凭据并签发令牌
func (s *LoginService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.ValidateCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	tokens, err := s.jwtService.GenerateTokens(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &LoginResult{User: user, Tokens: tokens}, nil
}
