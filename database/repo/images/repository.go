package images

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/utils/validator"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound 记录不存在或不属于当前用户
var ErrNotFound = errors.New("record not found")

// PayloadRemover 删除存储中的文件，由调用方在事务内执行
type PayloadRemover func(ctx context.Context, paths []string) error

// Repository 原图仓库，所有查询都按 user_id 过滤
type Repository struct {
	db database.Provider
}

// NewRepository 创建原图仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// Create 校验并保存原图记录
func (r *Repository) Create(ctx context.Context, image *models.Image) error {
	if err := validator.Struct(image); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// ListByUser 列出用户的全部原图，按 ID 升序
func (r *Repository) ListByUser(ctx context.Context, userID uint) ([]*models.Image, error) {
	var images []*models.Image
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// GetByIDAndUser 获取属于该用户的原图，预加载所有者
func (r *Repository) GetByIDAndUser(ctx context.Context, id, userID uint) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND user_id = ?", id, userID).
		First(&image).Error
	if err != nil {
		return nil, translate(err)
	}
	return &image, nil
}

// UpdateDescription 更新描述
func (r *Repository) UpdateDescription(ctx context.Context, id, userID uint, description string) (*models.Image, error) {
	image, err := r.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("description", description).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update image: %w", err)
	}
	image.Description = description
	return image, nil
}

// DeleteCascade 在一个事务中删除原图及其缩放图
// 先删记录，再一次性删除缩放图和原图的文件；文件删除失败则回滚
func (r *Repository) DeleteCascade(ctx context.Context, id, userID uint, remove PayloadRemover) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		var image models.Image
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&image).Error; err != nil {
			return translate(err)
		}

		var resizedPaths []string
		if err := tx.Model(&models.Resized{}).
			Where("image_id = ?", image.ID).
			Order("id ASC").
			Pluck("path", &resizedPaths).Error; err != nil {
			return fmt.Errorf("failed to collect resized paths: %w", err)
		}

		if err := tx.Where("image_id = ?", image.ID).Delete(&models.Resized{}).Error; err != nil {
			return fmt.Errorf("failed to delete resized images: %w", err)
		}
		if err := tx.Delete(&models.Image{}, image.ID).Error; err != nil {
			return fmt.Errorf("failed to delete image: %w", err)
		}

		if remove == nil {
			return nil
		}
		return remove(ctx, append(resizedPaths, image.Path))
	})
}

// DeleteAllForUserWithTx 在事务中删除用户的所有原图和缩放图，返回待删除的文件路径
func (r *Repository) DeleteAllForUserWithTx(tx *gorm.DB, userID uint) ([]string, error) {
	paths, err := listPathsByUser(tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.Resized{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete resized images: %w", err)
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.Image{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete images: %w", err)
	}
	return paths, nil
}

func listPathsByUser(db *gorm.DB, userID uint) ([]string, error) {
	var resizedPaths, imagePaths []string
	if err := db.Model(&models.Resized{}).Where("user_id = ?", userID).Order("id ASC").Pluck("path", &resizedPaths).Error; err != nil {
		return nil, fmt.Errorf("failed to list resized paths: %w", err)
	}
	if err := db.Model(&models.Image{}).Where("user_id = ?", userID).Order("id ASC").Pluck("path", &imagePaths).Error; err != nil {
		return nil, fmt.Errorf("failed to list image paths: %w", err)
	}
	return append(resizedPaths, imagePaths...), nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
