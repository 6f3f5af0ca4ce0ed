package model

import "errors"

// ErrMalformedCommit marks a commit entry that lacks required fields. Such
// entries are skipped; their siblings are still processed.
var ErrMalformedCommit = errors.New("malformed commit")

// Commit is one commit from a push payload or a pull request's commit list.
// Committer is nil when the payload omits it.
type Commit struct {
	SHA       string
	Author    *Identity
	Committer *Identity
}

// ResolvedCommit is a commit together with its distinct contributors, author
// first.
type ResolvedCommit struct {
	SHA          string
	Contributors []Identity
}
