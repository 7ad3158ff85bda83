package models

import (
	"strings"
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email" validate:"required,email,max=255"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name" validate:"required,max=255"`
	Password    string    `gorm:"not null" json:"-"`
	IsActive    bool      `gorm:"default:true;not null" json:"is_active"`
	IsStaff     bool      `gorm:"default:false;not null" json:"is_staff"`
	IsSuperuser bool      `gorm:"default:false;not null" json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeEmail 域名部分转小写，本地部分保持原样
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
