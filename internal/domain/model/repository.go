package model

// Repository identifies a GitHub repository guarded by an agreement.
type Repository struct {
	Owner string
	Name  string
}

// FullName returns the "owner/name" form used in logs and API paths.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether the repository lacks an owner or a name.
func (r Repository) IsZero() bool {
	return r.Owner == "" || r.Name == ""
}
