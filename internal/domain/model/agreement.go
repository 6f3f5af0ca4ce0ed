package model

import "time"

// Agreement is the CLA bound to exactly one repository. UserID is the account
// that registered it; that account's OAuth token authenticates every GitHub
// call made on the repository's behalf.
type Agreement struct {
	ID             int64
	UserID         int64
	Owner          string
	Repo           string
	Text           string
	RequiredFields []string
	HookID         int64 // Zero until a webhook registration is recorded.
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Repository returns the repository the agreement guards.
func (a Agreement) Repository() Repository {
	return Repository{Owner: a.Owner, Name: a.Repo}
}

// Signature records that a user accepted an agreement. There is at most one
// per (UserID, AgreementID) and it is never mutated.
type Signature struct {
	ID          int64
	UserID      int64
	AgreementID int64
	SignedAt    time.Time
}
