package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"expense-tracker/internal/audit"
	"expense-tracker/internal/auth"
	"expense-tracker/internal/categories"
	"expense-tracker/internal/groups"
	"expense-tracker/internal/reporting"
	"expense-tracker/internal/transactions"
	"expense-tracker/internal/users"
	"expense-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse input, authorize, call internal services, return JSON.
type Handlers struct {
	Guard        *auth.Guard
	Users        *users.Service
	Groups       *groups.Service
	Categories   *categories.Service
	Transactions *transactions.Service
	Reports      *reporting.Service
	Audit        *audit.Service
	Limiter      LoginLimiter

	CookiePath string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ok writes the success envelope. refreshedTokenMessage is the advisory set
// when the access token was reissued on this request, or "".
func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data, "refreshedTokenMessage": auth.RefreshedMessage(c)})
}

func badRequest(c *gin.Context, cause string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": cause})
}

// clientCause extracts the message of a validation error from any service.
func clientCause(err error) (string, bool) {
	var (
		ue *users.ValidationError
		ge *groups.ValidationError
		ce *categories.ValidationError
		te *transactions.ValidationError
	)
	switch {
	case errors.As(err, &ue):
		return ue.Cause, true
	case errors.As(err, &ge):
		return ge.Cause, true
	case errors.As(err, &ce):
		return ce.Cause, true
	case errors.As(err, &te):
		return te.Cause, true
	}
	return "", false
}

// fail answers 400 with the cause for client mistakes and 500 otherwise.
func fail(c *gin.Context, err error) {
	if cause, isClient := clientCause(err); isClient {
		badRequest(c, cause)
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
}

// bind decodes the JSON body; a malformed body is reported with cause.
func bind(c *gin.Context, dst any, cause string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, cause)
		return false
	}
	return true
}

// record appends an audit event without failing the request.
func (h Handlers) record(c *gin.Context, fn func(ctx context.Context, s *audit.Service) error) {
	if h.Audit == nil {
		return
	}
	if err := fn(c.Request.Context(), h.Audit); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}

// AuditRefresh records silent token refreshes performed by any handler or
// middleware further down the chain.
func (h Handlers) AuditRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if auth.RefreshedMessage(c) == "" {
			return
		}
		username, err := auth.Username(c.Request.Context())
		if err != nil {
			return
		}
		h.record(c, func(ctx context.Context, s *audit.Service) error {
			return s.LogRefresh(ctx, username, c.ClientIP())
		})
	}
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
