package groups

import "errors"

var (
	ErrNotFound      = errors.New("groups: not found")
	ErrAlreadyExists = errors.New("groups: name already taken")
	// ErrMemberGrouped is returned when a member already belongs to a group.
	ErrMemberGrouped = errors.New("groups: member already in a group")
)

type ValidationError struct {
	Cause string
}

func (e *ValidationError) Error() string { return e.Cause }

func invalid(cause string) error { return &ValidationError{Cause: cause} }

const (
	CauseInvalidInformation = "Invalid informations"
	CauseInvalidEmails      = "Invalid emails"
	CauseNameTaken          = "A group with this name already exists, aborting..."
	CauseCallerMissing      = "Calling user doesn't exist"
	CauseCallerGrouped      = "Calling user can't be added to this group, aborting..."
	CauseNotFound           = "Group not found"
	CauseDoesNotExist       = "Group doesn't exist"
	CauseNothingToAdd       = "Nothing to add"
	CauseNothingToRemove    = "Nothing to remove"
	CauseOnlyMember         = "User is the only group member"
)
