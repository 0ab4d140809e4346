package main

import (
	"expense-tracker/internal/auth"
	"expense-tracker/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers) {
	r.GET("/healthz", httpapi.Health)

	g := h.Guard
	simple := auth.RequirePolicy(g, auth.SimplePolicy{})
	admin := auth.RequirePolicy(g, auth.AdminPolicy{})
	userOrAdmin := auth.RequireUserOrAdmin(g, "username")

	api := r.Group("/api")
	api.Use(h.AuditRefresh())

	// AUTH routes
	api.POST("/register", h.Register)
	api.POST("/admin", h.RegisterAdmin)
	api.POST("/login", h.Login)
	api.GET("/logout", h.Logout)

	// USERS routes
	api.GET("/users", admin, h.GetUsers)
	api.DELETE("/users", admin, h.DeleteUser)
	api.GET("/users/:username", userOrAdmin, h.GetUser)
	api.POST("/users/:username/transactions", auth.RequireUser(g, "username"), h.CreateTransaction)
	api.GET("/users/:username/transactions", userOrAdmin, h.GetTransactionsByUser)
	api.GET("/users/:username/transactions/category/:category", userOrAdmin, h.GetTransactionsByUser)
	api.DELETE("/users/:username/transactions", userOrAdmin, h.DeleteTransaction)
	api.GET("/users/:username/summary", userOrAdmin, h.GetUserSummary)

	// GROUPS routes; per-group authorization runs inside the handlers
	// because the policy depends on the stored members.
	api.POST("/groups", simple, h.CreateGroup)
	api.GET("/groups", admin, h.GetGroups)
	api.DELETE("/groups", admin, h.DeleteGroup)
	api.GET("/groups/:name", h.GetGroup)
	api.PATCH("/groups/:name/add", h.AddToGroup)
	api.PATCH("/groups/:name/insert", h.AddToGroup)
	api.PATCH("/groups/:name/remove", h.RemoveFromGroup)
	api.PATCH("/groups/:name/pull", h.RemoveFromGroup)
	api.GET("/groups/:name/transactions", h.GetTransactionsByGroup)
	api.GET("/groups/:name/transactions/category/:category", h.GetTransactionsByGroup)
	api.GET("/groups/:name/summary", h.GetGroupSummary)

	// CATEGORIES routes
	api.POST("/categories", admin, h.CreateCategory)
	api.GET("/categories", simple, h.GetCategories)
	api.PATCH("/categories/:type", admin, h.UpdateCategory)
	api.DELETE("/categories", admin, h.DeleteCategories)

	// TRANSACTIONS routes
	api.GET("/transactions", admin, h.GetAllTransactions)
	api.DELETE("/transactions", admin, h.DeleteTransactions)
	api.GET("/transactions/users/:username", userOrAdmin, h.GetTransactionsByUser)
	api.GET("/transactions/users/:username/category/:category", userOrAdmin, h.GetTransactionsByUser)
	api.GET("/transactions/groups/:name", h.GetTransactionsByGroup)
	api.GET("/transactions/groups/:name/category/:category", h.GetTransactionsByGroup)
}
