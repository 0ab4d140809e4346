package httpapi

import (
	"expense-tracker/internal/categories"

	"github.com/gin-gonic/gin"
)

// Category routes: every mutation requires Admin; listing requires a
// logged-in caller.

func (h Handlers) CreateCategory(c *gin.Context) {
	var req categories.Request
	if !bind(c, &req, categories.CauseMissingInformation) {
		return
	}
	cat, err := h.Categories.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cat)
}

func (h Handlers) UpdateCategory(c *gin.Context) {
	var req categories.Request
	if !bind(c, &req, categories.CauseMissingInformation) {
		return
	}
	res, err := h.Categories.Update(c.Request.Context(), c.Param("type"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

func (h Handlers) DeleteCategories(c *gin.Context) {
	var req categories.DeleteRequest
	if !bind(c, &req, categories.CauseMissingInformation) {
		return
	}
	res, err := h.Categories.Delete(c.Request.Context(), req.Types)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

func (h Handlers) GetCategories(c *gin.Context) {
	list, err := h.Categories.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}
