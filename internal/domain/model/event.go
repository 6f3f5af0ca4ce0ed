package model

// PushEvent is a decoded push delivery.
type PushEvent struct {
	DeliveryID string
	Repository Repository
	Commits    []Commit
}

// PullRequestEvent is a decoded pull_request delivery.
type PullRequestEvent struct {
	DeliveryID string
	Action     string
	Repository Repository
	Number     int
}

// Event is one inbound webhook delivery. Exactly one of Push or PullRequest
// is set for the kinds the gate acts on; every other kind carries neither.
type Event struct {
	Kind        EventKind
	DeliveryID  string
	Push        *PushEvent
	PullRequest *PullRequestEvent
}
