package auth

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/imagehost/cache"
	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/database/repo/accounts"
	"github.com/anoixa/imagehost/utils"
)

// ErrUserNotFound 用户不存在或已停用
var ErrUserNotFound = errors.New("user not found")

// UserLookup 按 ID 查询有效用户，结果缓存一段时间
// 缓存的用户不含密码哈希
type UserLookup struct {
	repo  *accounts.Repository
	cache cache.Provider
	ttl   time.Duration
}

// NewUserLookup 创建用户查询，cacheProvider 为 nil 时不缓存
func NewUserLookup(repo *accounts.Repository, cacheProvider cache.Provider, ttl time.Duration) *UserLookup {
	return &UserLookup{repo: repo, cache: cacheProvider, ttl: ttl}
}

// FindActive 查询用户，停用用户视为不存在
func (l *UserLookup) FindActive(ctx context.Context, id uint) (*models.User, error) {
	key := cache.User.BuildID(id)

	if l.cache != nil && l.ttl > 0 {
		var cached models.User
		err := l.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !cache.IsCacheMiss(err) {
			utils.Logger().Warn().Err(err).Msg("[Auth] user cache read failed")
		}
	}

	user, err := l.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}

	if l.cache != nil && l.ttl > 0 {
		if err := l.cache.Set(ctx, key, user, l.ttl); err != nil {
			utils.Logger().Warn().Err(err).Msg("[Auth] user cache write failed")
		}
	}
	return user, nil
}

// Invalidate 用户资料变化或删除后清除缓存
func (l *UserLookup) Invalidate(ctx context.Context, id uint) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, cache.User.BuildID(id)); err != nil {
		utils.Logger().Warn().Err(err).Msg("[Auth] user cache invalidation failed")
	}
}
