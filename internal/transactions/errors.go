package transactions

import "errors"

var ErrNotFound = errors.New("transactions: not found")

type ValidationError struct {
	Cause string
}

func (e *ValidationError) Error() string { return e.Cause }

func invalid(cause string) error { return &ValidationError{Cause: cause} }

const (
	CauseInvalidInformation  = "Invalid informations"
	CauseUserDoesNotExist    = "User does not exist"
	CauseCategoryMissing     = "Category does not exist"
	CauseUserMissing         = "user does not exist"
	CauseCategoryNotFound    = "category does not exist"
	CauseTransactionNotFound = "Transaction does not exist"
	CauseIDNotFound          = "id not found"
	CauseDateWithRange       = "Cannot use 'date' with 'from' or 'upTo'."
	CauseInvalidDate         = "Invalid date filter"
	CauseInvalidAmount       = "Invalid amount filter"
)
