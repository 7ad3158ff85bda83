package middleware

import (
	"net/http"

	"github.com/anoixa/imagehost/api/common"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// SecureOptions 安全响应头配置
func SecureOptions(isDevelopment bool) secure.Options {
	return secure.Options{
		IsDevelopment:         isDevelopment,
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'none'; img-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// SecureHeaders 写入安全响应头，校验失败时中止请求
func SecureHeaders(opts secure.Options) gin.HandlerFunc {
	s := secure.New(opts)
	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			common.RespondErrorAbort(c, http.StatusBadRequest, "Bad request")
			return
		}
		c.Next()
	}
}
