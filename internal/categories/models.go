package categories

import "time"

// Category classifies transactions. Type is the natural key and is what
// transactions reference.
type Category struct {
	Type      string    `json:"type" db:"type"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

type Request struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

type DeleteRequest struct {
	Types []string `json:"types"`
}

// ChangeResult reports how many transactions were moved to another type.
type ChangeResult struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}
