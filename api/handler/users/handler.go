// Package users 用户注册、登录与账户管理接口
package users

import (
	"errors"
	"net/http"

	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/api/middleware"
	"github.com/anoixa/imagehost/database/repo/accounts"
	"github.com/anoixa/imagehost/internal/auth"
	"github.com/anoixa/imagehost/internal/services/users"
	"github.com/anoixa/imagehost/utils"
	"github.com/anoixa/imagehost/utils/validator"
	"github.com/gin-gonic/gin"
)

// Handler 用户接口
type Handler struct {
	users   *users.Service
	login   *auth.LoginService
	cookies middleware.CookieConfig
}

// NewHandler 创建用户接口
func NewHandler(userService *users.Service, loginService *auth.LoginService, cookies middleware.CookieConfig) *Handler {
	return &Handler{
		users:   userService,
		login:   loginService,
		cookies: cookies,
	}
}

type createRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email,max=255"`
	Name     string `form:"name" json:"name" binding:"required,max=255"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
}

type updateRequest struct {
	Email    *string `form:"email" json:"email" binding:"omitempty,email,max=255"`
	Name     *string `form:"name" json:"name" binding:"omitempty,min=1,max=255"`
	Password *string `form:"password" json:"password" binding:"omitempty,min=8"`
}

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Create POST /user/create/
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, validator.Message(err))
		return
	}

	user, err := h.users.Register(c.Request.Context(), users.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}
	common.RespondCreated(c, profile{Email: user.Email, Name: user.Name})
}

// Login POST /user/login/，成功时写入两个认证 Cookie
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false})
		return
	}

	result, err := h.login.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			utils.Logger().Error().Err(err).Msg("[Users] login failed")
		} else {
			utils.LogIfDevf("[Users] invalid credentials for %s", utils.SanitizeLogUsername(req.Email))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"success": false})
		return
	}

	middleware.SetAuthCookies(c, result.Tokens, h.cookies)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout POST /user/logout/
func (h *Handler) Logout(c *gin.Context) {
	middleware.ClearAuthCookies(c, h.cookies)
	c.Status(http.StatusNoContent)
}

// Me GET /user/me/
func (h *Handler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		common.RespondError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	common.RespondSuccess(c, profile{Email: user.Email, Name: user.Name})
}

// UpdateMe PATCH /user/me/
func (h *Handler) UpdateMe(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, validator.Message(err))
		return
	}

	user, err := h.users.Update(c.Request.Context(), middleware.CurrentUserID(c), users.UpdateInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}
	common.RespondSuccess(c, profile{Email: user.Email, Name: user.Name})
}

// DeleteMe DELETE /user/me/，删除账户后清除 Cookie
func (h *Handler) DeleteMe(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		respondUserError(c, err)
		return
	}
	middleware.ClearAuthCookies(c, h.cookies)
	c.Status(http.StatusNoContent)
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, accounts.ErrDuplicateEmail), errors.Is(err, accounts.ErrDuplicateName),
		errors.Is(err, users.ErrPasswordTooShort):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	case validator.IsValidationError(err):
		common.RespondError(c, http.StatusBadRequest, validator.Message(err))
	case errors.Is(err, accounts.ErrNotFound):
		common.RespondError(c, http.StatusNotFound, "Not found.")
	default:
		_ = c.Error(err)
		utils.Logger().Error().Err(err).Msg("[Users] request failed")
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
