package reporting

import "time"

// SpendRequest selects the transactions to aggregate. A nil Usernames means
// every user.
type SpendRequest struct {
	Usernames []string
	From      *time.Time
	UpTo      *time.Time
}

// CategoryTotal aggregates the transactions filed under one category.
type CategoryTotal struct {
	Type  string  `json:"type"`
	Color string  `json:"color"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// SpendSummary is the aggregate view of a set of transactions.
// Positive amounts are expenses, negative amounts are income.
type SpendSummary struct {
	Count        int     `json:"count"`
	TotalExpense float64 `json:"totalExpense"`
	TotalIncome  float64 `json:"totalIncome"`
	Net          float64 `json:"net"`
	Average      float64 `json:"average"`

	ByCategory []CategoryTotal `json:"byCategory"`
}
