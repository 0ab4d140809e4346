package httpapi

import (
	"expense-tracker/internal/auth"
	"expense-tracker/internal/groups"
	"expense-tracker/internal/transactions"

	"github.com/gin-gonic/gin"
)

// CreateTransaction records a transaction. Route policy: the user only.
func (h Handlers) CreateTransaction(c *gin.Context) {
	var req transactions.CreateRequest
	if !bind(c, &req, transactions.CauseInvalidInformation) {
		return
	}
	tx, err := h.Transactions.Create(c.Request.Context(), c.Param("username"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tx)
}

// GetAllTransactions lists every transaction. Route policy: Admin.
func (h Handlers) GetAllTransactions(c *gin.Context) {
	list, err := h.Transactions.List(c.Request.Context(), transactions.Query{})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

// GetTransactionsByUser lists a user's transactions. Route policy: the user
// or an Admin. Query filters apply only when the user asks for their own
// unfiltered-by-category list.
func (h Handlers) GetTransactionsByUser(c *gin.Context) {
	category := c.Param("category")
	var f transactions.Filter
	if category == "" && auth.GrantedAs(c.Request.Context()) == auth.PolicyUser {
		parsed, err := transactions.ParseFilter(c.Request.URL.Query())
		if err != nil {
			fail(c, err)
			return
		}
		f = parsed
	}

	list, err := h.Transactions.ForUser(c.Request.Context(), c.Param("username"), category, f)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

// GetTransactionsByGroup lists the transactions of a group's members.
func (h Handlers) GetTransactionsByGroup(c *gin.Context) {
	g, allowed := h.authorizeGroup(c, groups.CauseNotFound)
	if !allowed {
		return
	}
	list, err := h.Transactions.ForMembers(c.Request.Context(), g.Usernames(), c.Param("category"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

// DeleteTransaction removes one of the path user's transactions.
// Route policy: the user or an Admin.
func (h Handlers) DeleteTransaction(c *gin.Context) {
	var req transactions.DeleteRequest
	if !bind(c, &req, transactions.CauseInvalidInformation) {
		return
	}
	if err := h.Transactions.DeleteOwn(c.Request.Context(), c.Param("username"), req.ID); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Successful deletion")
}

// DeleteTransactions removes several transactions at once. Route policy: Admin.
func (h Handlers) DeleteTransactions(c *gin.Context) {
	var req transactions.DeleteManyRequest
	if !bind(c, &req, transactions.CauseInvalidInformation) {
		return
	}
	if err := h.Transactions.DeleteMany(c.Request.Context(), req.IDs); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Successful deletion")
}
