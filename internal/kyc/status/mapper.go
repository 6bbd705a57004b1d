// Package status maps provider outcomes onto the canonical KYC status and
// derives the status shown at read time.
package status

import (
	"fmt"
	"strings"

	"irdesk/internal/kyc/models"
)

const (
	detailsPassed    = "Verification passed"
	detailsFailed    = "Verification failed"
	detailsPending   = "Verification in progress"
	detailsAwaiting  = "Waiting for applicant to complete verification"
	detailsWithdrawn = "Verification process withdrawn or failed"
)

// Outcome is the canonical status for a check plus a human-readable summary.
type Outcome struct {
	Status  models.Status
	Details string
}

// Map folds a check and its fetched reports into a canonical status.
// It is total: every check status, including undocumented ones and a nil
// check, maps to exactly one Status.
func Map(check *models.Check, reports []models.Report) Outcome {
	if check == nil {
		return Outcome{Status: models.StatusFailed, Details: detailsWithdrawn}
	}

	switch check.Status {
	case models.CheckComplete:
		if check.Result == models.ResultClear {
			return Outcome{Status: models.StatusApproved, Details: withSummary(detailsPassed, reports)}
		}
		return Outcome{Status: models.StatusFailed, Details: withSummary(detailsFailed, reports)}
	case models.CheckInProgress:
		return Outcome{Status: models.StatusPending, Details: detailsPending}
	case models.CheckAwaitingApplicant:
		return Outcome{Status: models.StatusNotStarted, Details: detailsAwaiting}
	default:
		return Outcome{Status: models.StatusFailed, Details: detailsWithdrawn}
	}
}

func withSummary(base string, reports []models.Report) string {
	if len(reports) == 0 {
		return base
	}
	return base + " - " + Summarize(reports)
}

// Summarize renders reports as "name: result (sub_result)", comma separated,
// in the order given.
func Summarize(reports []models.Report) string {
	parts := make([]string, 0, len(reports))
	for _, r := range reports {
		part := fmt.Sprintf("%s: %s", r.Name, r.Result)
		if r.SubResult != "" {
			part += fmt.Sprintf(" (%s)", r.SubResult)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
