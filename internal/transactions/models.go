package transactions

import (
	"encoding/json"
	"time"
)

// Transaction is a single expense (or income, when negative) recorded by a
// user under a category type.
type Transaction struct {
	ID       string    `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
	Type     string    `json:"type" db:"type"`
	Amount   float64   `json:"amount" db:"amount"`
	Date     time.Time `json:"date" db:"date"`
}

// View is a transaction enriched with its category color.
type View struct {
	Transaction
	Color string `json:"color"`
}

// CreateRequest accepts amount as a JSON number or a numeric string.
type CreateRequest struct {
	Username string      `json:"username"`
	Amount   json.Number `json:"amount"`
	Type     string      `json:"type"`
}

type DeleteRequest struct {
	ID string `json:"_id"`
}

type DeleteManyRequest struct {
	IDs []string `json:"_ids"`
}

// Query selects transactions. A nil Usernames matches every user; an empty
// non-nil slice matches nobody.
type Query struct {
	Usernames []string
	Type      string
	Filter    Filter
}
