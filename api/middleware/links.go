package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/utils"
)

const msgInvalidLink = "Invalid or expired link."

// LinkResolver 解析过期链接路径，返回重定向目标
type LinkResolver func(path string) (string, error)

// ExpiringLinks 在路由之前拦截带 exp=1 的请求
// 有效链接 302 跳转到目标文件，其他情况返回 404；不带 exp=1 的请求原样交给 next
func ExpiringLinks(resolve LinkResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("exp") != "1" {
			next.ServeHTTP(w, r)
			return
		}

		target, err := resolve(r.URL.Path)
		if err != nil {
			utils.LogIfDevf("[Links] rejected %s: %v", utils.SanitizeLogMessage(r.URL.Path), err)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(common.Response{Status: "error", Msg: msgInvalidLink})
			return
		}

		http.Redirect(w, r, target, http.StatusFound)
	})
}
