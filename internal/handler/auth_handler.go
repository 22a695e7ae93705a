package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urbandrives/storefront/internal/application"
	"github.com/urbandrives/storefront/internal/platform/middleware"
	"github.com/urbandrives/storefront/internal/platform/response"
)

// AuthHandler handles sign-up, sign-in, sign-out and the token endpoint.
type AuthHandler struct {
	service      *application.SessionService
	sessionTTL   time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *application.SessionService, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

// RegisterRoutes registers the auth routes. limiter guards the credential endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, limiter gin.HandlerFunc) {
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/sign-up", limiter, h.SignUp)
		authGroup.POST("/sign-in", limiter, h.SignIn)
		authGroup.POST("/sign-out", h.SignOut)
		authGroup.GET("/session", middleware.RequireSession(), h.Session)
		authGroup.GET("/token", middleware.RequireSession(), h.Token)
	}
}

// SignUp handles POST /api/auth/sign-up.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req application.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SignUp(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, int(h.sessionTTL.Seconds()))
	response.Created(c, result)
}

// SignIn handles POST /api/auth/sign-in.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req application.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SignIn(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, int(h.sessionTTL.Seconds()))
	response.Success(c, result)
}

// SignOut handles POST /api/auth/sign-out.
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.service.SignOut(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	response.Success(c, gin.H{"message": "Signed out"})
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(c *gin.Context) {
	cur, ok := currentSession(c)
	if !ok {
		return
	}
	response.Success(c, cur)
}

// Token handles GET /api/auth/token. The body is the bare {"token": ...}
// object that backend clients expect.
func (h *AuthHandler) Token(c *gin.Context) {
	cur, ok := currentSession(c)
	if !ok {
		return
	}
	result, err := h.service.Token(c.Request.Context(), cur)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, value, maxAge, "/", "", h.secureCookie, true)
}

func clientInfo(c *gin.Context) application.ClientInfo {
	return application.ClientInfo{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
