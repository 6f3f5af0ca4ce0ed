package model

import "strings"

// Identity is the author or committer metadata of a commit. It is not
// necessarily linked to a known User.
type Identity struct {
	Login string
	Name  string
	Email string
}

// Key returns the value identities are compared by: the login when present,
// otherwise the lower-cased, trimmed email.
func (i Identity) Key() string {
	if login := strings.TrimSpace(i.Login); login != "" {
		return "login:" + login
	}
	return "email:" + strings.ToLower(strings.TrimSpace(i.Email))
}

// Same reports whether both identities refer to the same contributor.
func (i Identity) Same(other Identity) bool {
	return i.Key() == other.Key()
}

// IsEmpty reports whether the identity has neither a login nor an email.
func (i Identity) IsEmpty() bool {
	return strings.TrimSpace(i.Login) == "" && strings.TrimSpace(i.Email) == ""
}

// String renders the identity for logs.
func (i Identity) String() string {
	if i.Login != "" {
		return i.Login
	}
	return i.Email
}
