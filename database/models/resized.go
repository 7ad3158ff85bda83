package models

import (
	"fmt"
	"time"
)

// Resized 原图的缩放衍生图
type Resized struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id" validate:"required"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	ImageID   *uint     `gorm:"index" json:"image_id"`
	Image     *Image    `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	Path      string    `gorm:"size:255;not null" json:"path" validate:"required,max=255"`
	Quality   int       `gorm:"not null" json:"quality" validate:"min=1,max=100"`
	Width     int       `gorm:"not null" json:"width" validate:"gte=1"`
	Height    int       `gorm:"not null" json:"height" validate:"gte=1"`
	Size      int64     `gorm:"not null" json:"size" validate:"gte=1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Resized) TableName() string {
	return "resized"
}

// Resolution 形如 "400x300px"
func (r *Resized) Resolution() string {
	return fmt.Sprintf("%dx%dpx", r.Width, r.Height)
}

// ParentName 父图名称，父图缺失时为空
func (r *Resized) ParentName() string {
	if r.Image == nil {
		return ""
	}
	return r.Image.Name
}
