// Package users 用户注册、资料修改与账户删除
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/database/repo/accounts"
	"github.com/anoixa/imagehost/database/repo/images"
	"github.com/anoixa/imagehost/internal/auth"
	"github.com/anoixa/imagehost/utils"
	cryptopackage "github.com/anoixa/imagehost/utils/crypto"
	"gorm.io/gorm"
)

// MinPasswordLength 密码最短长度
const MinPasswordLength = 8

// ErrPasswordTooShort 密码长度不足
var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// RegisterInput 注册参数
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// UpdateInput 资料修改参数，nil 表示不修改
type UpdateInput struct {
	Email    *string
	Name     *string
	Password *string
}

// Service 用户服务
type Service struct {
	db       database.Provider
	accounts *accounts.Repository
	images   *images.Repository
	lookup   *auth.UserLookup
	remove   images.PayloadRemover
	hash     func(password string) (string, error)
}

// NewService 创建用户服务，remove 用于删除账户时清理文件
func NewService(db database.Provider, accountsRepo *accounts.Repository, imagesRepo *images.Repository, lookup *auth.UserLookup, remove images.PayloadRemover) *Service {
	return &Service{
		db:       db,
		accounts: accountsRepo,
		images:   imagesRepo,
		lookup:   lookup,
		remove:   remove,
		hash:     cryptopackage.HashPassword,
	}
}

// Register 注册普通用户
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.create(ctx, in, false)
}

// CreateSuperuser 创建管理员，命令行使用
func (s *Service) CreateSuperuser(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.create(ctx, in, true)
}

func (s *Service) create(ctx context.Context, in RegisterInput, superuser bool) (*models.User, error) {
	if len(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:       in.Email,
		Name:        in.Name,
		Password:    hashed,
		IsActive:    true,
		IsStaff:     superuser,
		IsSuperuser: superuser,
	}
	if err := s.accounts.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	utils.Logger().Info().Uint("user_id", user.ID).Bool("superuser", superuser).Msg("[Users] user created")
	return user, nil
}

// Get 获取用户资料
func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.accounts.GetUserByID(ctx, id)
}

// Update 修改资料，密码会重新哈希
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.User, error) {
	user, err := s.accounts.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Password != nil {
		if len(*in.Password) < MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := s.hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
	}

	if err := s.accounts.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return user, nil
}

// Delete 删除账户及其全部图片，文件删除失败时整体回滚
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		paths, err := s.images.DeleteAllForUserWithTx(tx, id)
		if err != nil {
			return err
		}
		if err := s.accounts.DeleteUserWithTx(tx, id); err != nil {
			return err
		}
		if len(paths) > 0 && s.remove != nil {
			return s.remove(ctx, paths)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, accounts.ErrNotFound) {
			utils.Logger().Error().Err(err).Uint("user_id", id).Msg("[Users] account deletion failed")
		}
		return err
	}

	s.invalidate(ctx, id)
	utils.Logger().Info().Uint("user_id", id).Msg("[Users] account deleted")
	return nil
}

func (s *Service) invalidate(ctx context.Context, id uint) {
	if s.lookup != nil {
		s.lookup.Invalidate(ctx, id)
	}
}
