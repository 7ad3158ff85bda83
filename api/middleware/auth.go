package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/internal/auth"
	"github.com/anoixa/imagehost/utils"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"
)

const (
	msgCredentialsMissing = "Authentication credentials were not provided."
	msgTokenInvalid       = "Given token not valid for any token type"
)

// RequireAuth 校验 Authorization: Bearer <access token>
// 头部可以由 Session 中间件从 Cookie 写入，也可以由 API 客户端直接发送
func RequireAuth(authn *auth.SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, msgCredentialsMissing)
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, msgCredentialsMissing)
			return
		}

		user, err := authn.ResolveBearer(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				utils.Logger().Error().Err(err).Msg("[Auth] failed to resolve bearer token")
				common.RespondErrorAbort(c, http.StatusInternalServerError, "Internal server error")
				return
			}
			common.RespondErrorAbort(c, http.StatusUnauthorized, msgTokenInvalid)
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUserID 当前请求的用户 ID，未认证时为 0
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ContextUserIDKey)
}

// CurrentUser 当前请求的用户
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
