package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medrex/clinical-api/internal/handler"
	"github.com/medrex/clinical-api/internal/middleware"
	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/service/auth"
	"github.com/medrex/clinical-api/pkg/errors"
)

// logoutCookieTTL is how long the overwriting "loggedout" cookie lives.
const logoutCookieTTL = 10 * time.Second

type Handler struct {
	service    *auth.Service
	cookieName string
}

func NewHandler(service *auth.Service, cookieName string) *Handler {
	return &Handler{service: service, cookieName: cookieName}
}

// RegisterRoutes mounts the public auth routes. /auth/me is mounted by the
// router behind the guard.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.Validation("invalid request body"))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(resp))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.Validation("please provide email and password"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

// Logout overwrites the session cookie with a short-lived dummy value.
// Tokens are stateless, so a previously issued token stays valid until its
// natural expiry.
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(h.cookieName, "loggedout", int(logoutCookieTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, &handler.Response{Status: handler.StatusSuccess})
}

func (h *Handler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Error(errors.Unauthorized("", nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.service.TokenExpiry().Seconds())
	c.SetCookie(h.cookieName, token, maxAge, "/", "", false, true)
}
