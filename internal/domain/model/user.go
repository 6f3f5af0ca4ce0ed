package model

import "time"

// User is a known GitHub account that has signed in at least once.
type User struct {
	ID         int64
	UID        string // GitHub numeric account id, as a string.
	Login      string
	Name       string
	Email      string
	OAuthToken string // Plaintext at the domain boundary; encrypted at rest.
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OAuthIdentity carries the attributes accepted from an OAuth callback.
// Only these fields are ever copied onto a User.
type OAuthIdentity struct {
	UID   string
	Login string
	Name  string
	Email string
	Token string
}
