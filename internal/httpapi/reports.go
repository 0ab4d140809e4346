package httpapi

import (
	"errors"

	"expense-tracker/internal/groups"
	"expense-tracker/internal/reporting"
	"expense-tracker/internal/transactions"
	"expense-tracker/internal/users"

	"github.com/gin-gonic/gin"
)

// summarize answers with the spending summary of usernames over the range
// given by the date, from and upTo query parameters.
func (h Handlers) summarize(c *gin.Context, usernames []string) {
	f, err := transactions.ParseFilter(c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	out, err := h.Reports.SpendSummary(c.Request.Context(), reporting.SpendRequest{
		Usernames: usernames,
		From:      f.From,
		UpTo:      f.UpTo,
	})
	if errors.Is(err, reporting.ErrInvalidRequest) {
		badRequest(c, reporting.CauseInvalidRange)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

// GetUserSummary aggregates one user's spending. Route policy: the user or an Admin.
func (h Handlers) GetUserSummary(c *gin.Context) {
	u, err := h.Users.ByUsername(c.Request.Context(), c.Param("username"))
	if errors.Is(err, users.ErrNotFound) {
		badRequest(c, transactions.CauseUserMissing)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	h.summarize(c, []string{u.Username})
}

// GetGroupSummary aggregates the spending of a group's members.
func (h Handlers) GetGroupSummary(c *gin.Context) {
	g, allowed := h.authorizeGroup(c, groups.CauseNotFound)
	if !allowed {
		return
	}
	h.summarize(c, g.Usernames())
}
