package users

import "errors"

var (
	ErrNotFound      = errors.New("users: not found")
	ErrAlreadyExists = errors.New("users: already exists")
)

// ValidationError is a client mistake; Cause is safe to show to the caller.
type ValidationError struct {
	Cause string
}

func (e *ValidationError) Error() string { return e.Cause }

func invalid(cause string) error { return &ValidationError{Cause: cause} }

// Causes returned to clients.
const (
	CauseMissingInformation = "Missing informations"
	CauseInvalidEmail       = "Email inserted is not valid"
	CauseEmailInUse         = "Email inserted already in use"
	CauseUsernameInUse      = "Username inserted already in use"
	CauseInvalidCredentials = "Invalid credentials"
	CauseUserDoesNotExist   = "User does not exist"
	CauseWrongCredentials   = "Wrong credentials"
	CauseRefreshMissing     = "Refresh token missing"
	CauseUserNotFound       = "User not found"
	CauseEmailMissing       = "email not specified"
	CauseUserMissing        = "user does not exist"
	CauseAdminUndeletable   = "Admins can not be deleted"
	CausePasswordTooLong    = "Password must be at most 72 bytes"
)
