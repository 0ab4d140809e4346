package users

import (
	"time"

	"expense-tracker/internal/auth"
)

// User is the persisted account record.
//
// RefreshToken holds the refresh token issued at the last login. Logout
// clears it, which is how a session is identified and ended server-side.
type User struct {
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         auth.Role `json:"role" db:"role"`
	RefreshToken string    `json:"-" db:"refresh_token"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

// Claims returns the identity carried in this user's tokens.
func (u User) Claims() auth.Claims {
	return auth.Claims{Username: u.Username, Email: u.Email, Role: u.Role}
}

// Profile is the public view of a user.
type Profile struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     auth.Role `json:"role"`
}

func (u User) Profile() Profile {
	return Profile{Username: u.Username, Email: u.Email, Role: u.Role}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func roleOf(s string) auth.Role {
	if s == string(auth.RoleAdmin) {
		return auth.RoleAdmin
	}
	return auth.RoleRegular
}

type DeleteRequest struct {
	Email string `json:"email"`
}

// DeleteResult reports what was removed along with the account.
type DeleteResult struct {
	DeletedTransactions int64 `json:"deletedTransactions"`
	DeletedFromGroup    bool  `json:"deletedFromGroup"`
}
