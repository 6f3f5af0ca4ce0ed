package model

// PullRequest is the subset of an open pull request needed to recheck its
// commits after a new signature is recorded.
type PullRequest struct {
	Number  int
	Title   string
	Author  string
	HeadSHA string
	URL     string
}
