package github

import (
	"errors"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// hookExistsMessage is the validation message GitHub returns for a duplicate
// webhook. This is the only place the gate inspects error text.
const hookExistsMessage = "hook already exists"

// classify converts a go-github error into a *driven.PlatformError when GitHub
// produced a response, or a *driven.TransportError otherwise.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return &driven.PlatformError{
			Op:         op,
			StatusCode: statusOf(rateErr.Response),
			Code:       driven.CodeRateLimited,
			Message:    rateErr.Message,
			Err:        err,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &driven.PlatformError{
			Op:         op,
			StatusCode: statusOf(abuseErr.Response),
			Code:       driven.CodeRateLimited,
			Message:    abuseErr.Message,
			Err:        err,
		}
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) {
		status := statusOf(respErr.Response)
		return &driven.PlatformError{
			Op:         op,
			StatusCode: status,
			Code:       codeFor(status, respErr),
			Message:    messageOf(respErr),
			Err:        err,
		}
	}

	return &driven.TransportError{Op: op, Err: err}
}

func codeFor(status int, respErr *gh.ErrorResponse) driven.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return driven.CodeNotFound
	case status == http.StatusUnprocessableEntity && mentionsHookExists(respErr):
		return driven.CodeHookExists
	default:
		return driven.CodeRejected
	}
}

func mentionsHookExists(respErr *gh.ErrorResponse) bool {
	if strings.Contains(strings.ToLower(respErr.Message), hookExistsMessage) {
		return true
	}
	for _, e := range respErr.Errors {
		if strings.Contains(strings.ToLower(e.Message), hookExistsMessage) {
			return true
		}
	}
	return false
}

// messageOf joins the top-level message with any field-level messages.
func messageOf(respErr *gh.ErrorResponse) string {
	msgs := []string{respErr.Message}
	for _, e := range respErr.Errors {
		if e.Message != "" {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
