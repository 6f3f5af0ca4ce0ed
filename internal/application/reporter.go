package application

import (
	"context"
	"net/url"
	"strings"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// StatusContext is the label every commit status is written under.
const StatusContext = "clahub"

const (
	descriptionSigned   = "All contributors have signed the Contributor License Agreement."
	descriptionUnsigned = "Not all contributors have signed the Contributor License Agreement."
)

// StatusReporter turns verdicts into commit statuses.
type StatusReporter struct {
	publicURL string
}

// NewStatusReporter creates a reporter whose target URLs point below publicURL.
func NewStatusReporter(publicURL string) *StatusReporter {
	return &StatusReporter{publicURL: strings.TrimRight(publicURL, "/")}
}

// AgreementURL is the public page of repo's agreement.
func (r *StatusReporter) AgreementURL(repo model.Repository) string {
	return r.publicURL + "/agreements/" + url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name)
}

// Status builds the commit status for a verdict.
func (r *StatusReporter) Status(repo model.Repository, verdict model.Verdict) model.CommitStatus {
	description := descriptionUnsigned
	if verdict == model.VerdictSuccess {
		description = descriptionSigned
	}
	return model.CommitStatus{
		State:       verdict,
		TargetURL:   r.AgreementURL(repo),
		Description: description,
		Context:     StatusContext,
	}
}

// Report issues exactly one status call for sha. Repeated calls are not
// deduplicated; GitHub keeps the latest status per context.
func (r *StatusReporter) Report(
	ctx context.Context,
	platform driven.PlatformClient,
	repo model.Repository,
	sha string,
	verdict model.Verdict,
) error {
	return platform.CreateStatus(ctx, repo, sha, r.Status(repo, verdict))
}
