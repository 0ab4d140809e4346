package categories

import "errors"

var (
	ErrNotFound      = errors.New("categories: not found")
	ErrAlreadyExists = errors.New("categories: already exists")
)

type ValidationError struct {
	Cause string
}

func (e *ValidationError) Error() string { return e.Cause }

func invalid(cause string) error { return &ValidationError{Cause: cause} }

const (
	CauseMissingInformation = "Missing informations"
	CauseTypeExists         = "Category with this type exists already"
	CauseNotFound           = "Category not found"
	CauseUnknownTypes       = "Some types doesn't exists"
)
