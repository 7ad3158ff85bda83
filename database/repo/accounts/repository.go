package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/utils/validator"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 用户不存在
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail 邮箱已被使用
	ErrDuplicateEmail = errors.New("user with this email already exists")
	// ErrDuplicateName 用户名已被使用
	ErrDuplicateName = errors.New("user with this name already exists")
)

// Repository 账户仓库 - 封装所有账户相关的数据库操作
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的账户仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// CreateUser 创建用户，邮箱与用户名唯一
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	if err := validator.Struct(user); err != nil {
		return err
	}

	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := checkUnique(tx, user); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// GetUserByID 通过 ID 获取用户
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUserByEmail 通过邮箱获取用户
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UpdateUser 保存用户资料，重新检查唯一性
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	if err := validator.Struct(user); err != nil {
		return err
	}

	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := checkUnique(tx, user); err != nil {
			return err
		}
		result := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"email":    user.Email,
			"name":     user.Name,
			"password": user.Password,
		})
		if result.Error != nil {
			return fmt.Errorf("failed to update user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteUserWithTx 在事务中删除用户
func (r *Repository) DeleteUserWithTx(tx *gorm.DB, id uint) error {
	result := tx.Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func checkUnique(tx *gorm.DB, user *models.User) error {
	var count int64
	if err := tx.Model(&models.User{}).
		Where("email = ? AND id <> ?", user.Email, user.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateEmail
	}

	if err := tx.Model(&models.User{}).
		Where("name = ? AND id <> ?", user.Name, user.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateName
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
