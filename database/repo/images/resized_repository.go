package images

import (
	"context"
	"fmt"

	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/utils/validator"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResizedRepository 缩放图仓库
type ResizedRepository struct {
	db database.Provider
}

// NewResizedRepository 创建缩放图仓库
func NewResizedRepository(db database.Provider) *ResizedRepository {
	return &ResizedRepository{db: db}
}

// Create 校验并保存缩放图记录
func (r *ResizedRepository) Create(ctx context.Context, resized *models.Resized) error {
	if err := validator.Struct(resized); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(resized).Error; err != nil {
		return fmt.Errorf("failed to create resized image: %w", err)
	}
	return nil
}

// ListByUser 列出用户的缩放图，预加载父图
func (r *ResizedRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Resized, error) {
	var list []*models.Resized
	err := r.db.WithContext(ctx).
		Preload("Image").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list resized images: %w", err)
	}
	return list, nil
}

// GetByIDAndUser 获取属于该用户的缩放图，预加载父图和所有者
func (r *ResizedRepository) GetByIDAndUser(ctx context.Context, id, userID uint) (*models.Resized, error) {
	var resized models.Resized
	err := r.db.WithContext(ctx).
		Preload("Image").
		Preload("User").
		Where("id = ? AND user_id = ?", id, userID).
		First(&resized).Error
	if err != nil {
		return nil, translate(err)
	}
	return &resized, nil
}

// Delete 删除缩放图记录及其文件，文件删除失败则回滚
func (r *ResizedRepository) Delete(ctx context.Context, id, userID uint, remove PayloadRemover) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		var resized models.Resized
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&resized).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&models.Resized{}, resized.ID).Error; err != nil {
			return fmt.Errorf("failed to delete resized image: %w", err)
		}
		if remove == nil {
			return nil
		}
		return remove(ctx, []string{resized.Path})
	})
}
