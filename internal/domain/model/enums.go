package model

// Verdict is the commit-level compliance outcome, reported as a commit status.
type Verdict string

const (
	VerdictSuccess Verdict = "success"
	VerdictFailure Verdict = "failure"
)

// ContributorStatus is the compliance state of one contributor identity.
type ContributorStatus string

const (
	StatusSigned   ContributorStatus = "SIGNED"
	StatusExempt   ContributorStatus = "EXEMPT"
	StatusUnsigned ContributorStatus = "UNSIGNED"
)

// Satisfied reports whether the status lets a commit pass.
func (s ContributorStatus) Satisfied() bool {
	return s == StatusSigned || s == StatusExempt
}

// EventKind is the webhook event type taken from the X-GitHub-Event header.
type EventKind string

const (
	EventPush        EventKind = "push"
	EventPullRequest EventKind = "pull_request"
	EventPing        EventKind = "ping"
)
