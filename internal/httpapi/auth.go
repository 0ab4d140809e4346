package httpapi

import (
	"context"
	"net/http"
	"strings"

	"expense-tracker/internal/audit"
	"expense-tracker/internal/auth"
	"expense-tracker/internal/users"
	"expense-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

const causeTooManyAttempts = "Too many login attempts"

func (h Handlers) register(c *gin.Context, role auth.Role, message string) {
	var req users.RegisterRequest
	if !bind(c, &req, users.CauseMissingInformation) {
		return
	}
	if _, err := h.Users.Register(c.Request.Context(), req, role); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": message})
}

func (h Handlers) Register(c *gin.Context) {
	h.register(c, auth.RoleRegular, "User added successfully")
}

func (h Handlers) RegisterAdmin(c *gin.Context) {
	h.register(c, auth.RoleAdmin, "Admin added successfully")
}

// Login checks credentials, stores the refresh token and sets both cookies.
// Attempts are throttled per email.
func (h Handlers) Login(c *gin.Context) {
	var req users.LoginRequest
	if !bind(c, &req, users.CauseInvalidCredentials) {
		return
	}

	ctx := c.Request.Context()
	key := "login:" + strings.ToLower(strings.TrimSpace(req.Email))
	if h.Limiter != nil {
		allowed, err := h.Limiter.Allow(ctx, key)
		if err != nil {
			// Fail open on limiter errors.
			logger.FromGin(c).Warn("login limiter unavailable", "err", err)
		} else if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": causeTooManyAttempts})
			return
		}
	}

	u, pair, err := h.Users.Login(ctx, req)
	if err != nil {
		fail(c, err)
		return
	}
	if h.Limiter != nil {
		if err := h.Limiter.Reset(ctx, key); err != nil {
			logger.FromGin(c).Warn("login limiter reset failed", "err", err)
		}
	}

	http.SetCookie(c.Writer, auth.NewCookie(auth.AccessCookieName, pair.AccessToken, h.CookiePath, h.AccessTTL))
	http.SetCookie(c.Writer, auth.NewCookie(auth.RefreshCookieName, pair.RefreshToken, h.CookiePath, h.RefreshTTL))
	h.record(c, func(ctx context.Context, s *audit.Service) error {
		return s.LogLogin(ctx, u.Username, c.ClientIP())
	})
	ok(c, gin.H{"accessToken": pair.AccessToken, "refreshToken": pair.RefreshToken})
}

// Logout ends the session identified by the refresh token cookie.
func (h Handlers) Logout(c *gin.Context) {
	pair := auth.PairFromRequest(c.Request)
	u, err := h.Users.Logout(c.Request.Context(), pair.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}

	http.SetCookie(c.Writer, auth.ExpiredCookie(auth.AccessCookieName, h.CookiePath))
	http.SetCookie(c.Writer, auth.ExpiredCookie(auth.RefreshCookieName, h.CookiePath))
	h.record(c, func(ctx context.Context, s *audit.Service) error {
		return s.LogLogout(ctx, u.Username, c.ClientIP())
	})
	ok(c, gin.H{"message": "logged out"})
}
