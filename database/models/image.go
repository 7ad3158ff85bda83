package models

import (
	"fmt"
	"time"
)

// Image 用户上传的原图
type Image struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_images_user_created,priority:1" json:"user_id" validate:"required"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	Path        string    `gorm:"size:255;not null" json:"path" validate:"required,max=255"`
	Name        string    `gorm:"size:255;not null" json:"name" validate:"max=255"`
	Width       int       `gorm:"not null" json:"width" validate:"gte=1"`
	Height      int       `gorm:"not null" json:"height" validate:"gte=1"`
	Format      string    `gorm:"size:4;not null" json:"format" validate:"required,max=4"`
	Size        int64     `gorm:"not null" json:"size" validate:"gte=1"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index:idx_images_user_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Resolution 形如 "800x600px"
func (i *Image) Resolution() string {
	return fmt.Sprintf("%dx%dpx", i.Width, i.Height)
}
