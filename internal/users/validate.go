package users

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidEmail reports whether s looks like a deliverable address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func nonEmpty(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
