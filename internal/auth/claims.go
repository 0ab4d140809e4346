package auth

import "github.com/golang-jwt/jwt/v5"

type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleRegular Role = "Regular"
)

// Claims are the only supported JWT claims shape for this service.
// Access and refresh tokens carry the same identity fields; a claims value
// missing any of them is never acted upon.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Identity returns a copy holding only the identity fields, suitable for
// re-signing with fresh registered claims.
func (c Claims) Identity() Claims {
	return Claims{Username: c.Username, Email: c.Email, Role: c.Role}
}

func (c Claims) complete() bool {
	return c.Username != "" && c.Email != "" && c.Role != ""
}
