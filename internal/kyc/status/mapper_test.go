package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"irdesk/internal/kyc/models"
)

func TestMap(t *testing.T) {
	documentClear := []models.Report{{Name: "document", Result: models.ResultClear}}

	cases := []struct {
		name    string
		check   *models.Check
		reports []models.Report
		status  models.Status
		details string
	}{
		{
			name:    "complete and clear with report is approved",
			check:   &models.Check{Status: models.CheckComplete, Result: models.ResultClear},
			reports: documentClear,
			status:  models.StatusApproved,
			details: "Verification passed - document: clear",
		},
		{
			name:    "complete and clear without reports",
			check:   &models.Check{Status: models.CheckComplete, Result: models.ResultClear},
			status:  models.StatusApproved,
			details: "Verification passed",
		},
		{
			name:  "complete and consider is failed",
			check: &models.Check{Status: models.CheckComplete, Result: models.ResultConsider},
			reports: []models.Report{
				{Name: "document", Result: models.ResultConsider, SubResult: "suspected"},
				{Name: "facial_similarity_photo", Result: models.ResultClear},
			},
			status:  models.StatusFailed,
			details: "Verification failed - document: consider (suspected), facial_similarity_photo: clear",
		},
		{
			name:    "complete without result is failed",
			check:   &models.Check{Status: models.CheckComplete},
			status:  models.StatusFailed,
			details: "Verification failed",
		},
		{
			name:    "in progress is pending",
			check:   &models.Check{Status: models.CheckInProgress},
			reports: documentClear,
			status:  models.StatusPending,
			details: "Verification in progress",
		},
		{
			name:    "awaiting applicant is not started",
			check:   &models.Check{Status: models.CheckAwaitingApplicant},
			status:  models.StatusNotStarted,
			details: "Waiting for applicant to complete verification",
		},
		{
			name:    "withdrawn is failed",
			check:   &models.Check{Status: models.CheckWithdrawn},
			status:  models.StatusFailed,
			details: "Verification process withdrawn or failed",
		},
		{
			name:    "undocumented status is failed",
			check:   &models.Check{Status: "paused"},
			status:  models.StatusFailed,
			details: "Verification process withdrawn or failed",
		},
		{
			name:    "nil check is failed",
			status:  models.StatusFailed,
			details: "Verification process withdrawn or failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := Map(tc.check, tc.reports)
			assert.Equal(t, tc.status, first.Status)
			assert.Equal(t, tc.details, first.Details)
			assert.Equal(t, first, Map(tc.check, tc.reports), "mapping must be deterministic")
		})
	}
}

func TestMap_ContainsReportSummary(t *testing.T) {
	out := Map(&models.Check{Status: models.CheckComplete, Result: models.ResultClear},
		[]models.Report{{Name: "document", Result: models.ResultClear}})
	assert.Contains(t, out.Details, "document: clear")
}
