package auth

// IsMissingInformation reports whether either claims value lacks a username,
// email or role.
func IsMissingInformation(a, b Claims) bool {
	return !a.complete() || !b.complete()
}

// IsMismatched reports whether the two claims disagree on any identity field.
func IsMismatched(a, b Claims) bool {
	return a.Username != b.Username ||
		a.Email != b.Email ||
		a.Role != b.Role
}
