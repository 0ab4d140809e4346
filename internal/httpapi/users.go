package httpapi

import (
	"context"

	"expense-tracker/internal/audit"
	"expense-tracker/internal/auth"
	"expense-tracker/internal/users"

	"github.com/gin-gonic/gin"
)

// GetUsers lists every account. Route policy: Admin.
func (h Handlers) GetUsers(c *gin.Context) {
	list, err := h.Users.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

// GetUser returns one profile. Route policy: the user or an Admin.
func (h Handlers) GetUser(c *gin.Context) {
	p, err := h.Users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, p)
}

// DeleteUser removes a Regular account and its data. Route policy: Admin.
func (h Handlers) DeleteUser(c *gin.Context) {
	var req users.DeleteRequest
	if !bind(c, &req, users.CauseEmailMissing) {
		return
	}
	res, err := h.Users.Delete(c.Request.Context(), req.Email)
	if err != nil {
		fail(c, err)
		return
	}

	actor, _ := auth.Username(c.Request.Context())
	h.record(c, func(ctx context.Context, s *audit.Service) error {
		return s.LogAdminAction(ctx, actor, req.Email, c.ClientIP(), "user deleted")
	})
	ok(c, res)
}
