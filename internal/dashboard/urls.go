package dashboard

import (
	"fmt"
	"net/url"
	"strings"
)

// URLs builds the dashboard's fixed set of path templates off a
// configurable base URL.
type URLs struct {
	base string
}

// NewURLs normalizes the base URL to carry exactly one trailing slash.
func NewURLs(base string) URLs {
	return URLs{base: strings.TrimRight(base, "/") + "/"}
}

// Base returns the normalized base URL.
func (u URLs) Base() string { return u.base }

// Transfer is the transfer intake/listing tab.
func (u URLs) Transfer() string { return u.base + "transfer/" }

// Ingest is the ingest (package-in-progress) listing tab.
func (u URLs) Ingest() string { return u.base + "ingest/" }

// Login is the account login form.
func (u URLs) Login() string { return u.base + "administration/accounts/login/" }

// InstallerWelcome is the first-run setup form.
func (u URLs) InstallerWelcome() string { return u.base + "installer/welcome/" }

// PreservationPlanning is the format policy browsing view.
func (u URLs) PreservationPlanning() string { return u.base + "fpr/format/" }

// NormalizationRules is the rules-admin listing for normalization.
func (u URLs) NormalizationRules() string { return u.base + "fpr/fprule/normalization/" }

// Policies is the policy-admin upload view.
func (u URLs) Policies() string { return u.base + "administration/policies/" }

// Tasks is the task-detail view for one job.
func (u URLs) Tasks(jobUUID string) string {
	return fmt.Sprintf("%stasks/%s/", u.base, jobUUID)
}

// NormalizationReport is the per-SIP normalization report view.
func (u URLs) NormalizationReport(sipUUID string) string {
	return fmt.Sprintf("%singest/normalization-report/%s/", u.base, sipUUID)
}

// AIPPreview is the package-review view for one SIP.
func (u URLs) AIPPreview(sipUUID string) string {
	return fmt.Sprintf("%singest/preview/aip/%s", u.base, sipUUID)
}

// Resolve resolves a possibly relative href (e.g. a pagination link)
// against the base URL.
func (u URLs) Resolve(href string) (string, error) {
	base, err := url.Parse(u.base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %s: %w", u.base, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid href %s: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}
