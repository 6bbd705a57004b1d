package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "irdesk/pkg/domain-errors"
)

func TestVerificationDetails_MergeKeepsEarlierKeys(t *testing.T) {
	prev := VerificationDetails{"checkId": "chk-1", "notes": "manual review"}
	merged := prev.Merge(VerificationDetails{"checkId": "chk-2", "details": "Verification passed"})

	assert.Equal(t, "chk-2", merged.CheckID())
	assert.Equal(t, "manual review", merged["notes"])
	assert.Equal(t, "Verification passed", merged["details"])
	assert.Equal(t, "chk-1", prev.CheckID(), "merge must not mutate the receiver")
}

func TestVerificationDetails_ScanValue(t *testing.T) {
	var d VerificationDetails
	require.NoError(t, d.Scan([]byte(`{"checkId":"chk-9","subjectId":"app-1"}`)))
	assert.Equal(t, "chk-9", d.CheckID())
	assert.Equal(t, "app-1", d.SubjectID())

	v, err := d.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"checkId":"chk-9","subjectId":"app-1"}`, string(v.([]byte)))

	require.NoError(t, d.Scan(nil))
	assert.Empty(t, d)
	assert.Error(t, d.Scan(42))
}

func TestInvestor_ApplyScreeningStarted(t *testing.T) {
	now := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	inv, err := NewInvestor(uuid.New(), "Ada Lovelace", "ada@example.com", "individual", nil, now)
	require.NoError(t, err)
	inv.VerificationDetails = VerificationDetails{"source": "csv"}

	inv.ApplyScreeningStarted("chk-1", "app-1", StatusPending, "Verification in progress", now)

	assert.Equal(t, StatusPending, inv.KYCStatus)
	assert.Equal(t, "2026-03-04", inv.FormatLastUpdated())
	assert.Equal(t, "chk-1", inv.CheckID())
	assert.Equal(t, "app-1", inv.VerificationDetails.SubjectID())
	assert.Equal(t, "csv", inv.VerificationDetails["source"])
	assert.Equal(t, "2026-03-04T15:30:00Z", inv.VerificationDetails[DetailUpdatedAt])
}

func TestInvestor_CanReconcile(t *testing.T) {
	inv := &Investor{VerificationDetails: VerificationDetails{DetailCheckID: "chk-2"}}
	assert.NoError(t, inv.CanReconcile("chk-2"))

	err := inv.CanReconcile("chk-1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestNewInvestor_RequiresIdentity(t *testing.T) {
	_, err := NewInvestor(uuid.Nil, "A", "a@example.com", "individual", nil, time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewInvestor(uuid.New(), "", "a@example.com", "individual", nil, time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestReportNamesFor(t *testing.T) {
	assert.Equal(t, []string{"document", "facial_similarity_photo"}, ReportNamesFor(KindIndividual))
	assert.Equal(t, []string{"company_verification"}, ReportNamesFor(KindBusiness))
}
