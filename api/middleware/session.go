package middleware

import (
	"net/http"
	"time"

	"github.com/anoixa/imagehost/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// CookieConfig 认证 Cookie 参数
type CookieConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Secure     bool
}

// Session 从 Cookie 解析身份，每个请求只执行一次
// 认证成功时写入 Authorization 头，令牌轮换时下发新 Cookie，失效时清除 Cookie
func Session(authn *auth.SessionAuthenticator, cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, _ := c.Cookie(AccessCookieName)
		refresh, _ := c.Cookie(RefreshCookieName)

		out := authn.Authenticate(c.Request.Context(), access, refresh)
		switch {
		case out.State == auth.Authenticated:
			c.Request.Header.Set("Authorization", "Bearer "+out.Token)
			if out.Rotated != nil {
				SetAuthCookies(c, out.Rotated, cfg)
			}
		case out.ClearCookies:
			ClearAuthCookies(c, cfg)
		}

		c.Next()
	}
}

// SetAuthCookies 同时写入两个 Cookie
func SetAuthCookies(c *gin.Context, pair *auth.TokenPair, cfg CookieConfig) {
	setCookie(c, AccessCookieName, pair.AccessToken, int(cfg.AccessTTL.Seconds()), cfg.Secure)
	setCookie(c, RefreshCookieName, pair.RefreshToken, int(cfg.RefreshTTL.Seconds()), cfg.Secure)
}

// ClearAuthCookies 同时清除两个 Cookie
func ClearAuthCookies(c *gin.Context, cfg CookieConfig) {
	setCookie(c, AccessCookieName, "", -1, cfg.Secure)
	setCookie(c, RefreshCookieName, "", -1, cfg.Secure)
}

func setCookie(c *gin.Context, name, value string, maxAge int, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
