package model

// CommitStatus is the body of one commit status written to GitHub.
type CommitStatus struct {
	State       Verdict
	TargetURL   string
	Description string
	Context     string
}

// CommitVerdict is the evaluation outcome of one commit. Err is set when the
// commit could not be evaluated; such a commit carries no verdict and must not
// be reported.
type CommitVerdict struct {
	SHA          string
	Verdict      Verdict
	Contributors []ContributorResult
	Err          error
}

// ContributorResult is the evaluated status of one contributor identity.
// UserID is zero for identities that map to no known account.
type ContributorResult struct {
	Identity Identity
	UserID   int64
	Status   ContributorStatus
}
