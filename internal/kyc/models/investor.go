package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	dErrors "irdesk/pkg/domain-errors"
)

// Keys written into Investor.VerificationDetails by the engine. Other keys
// written earlier by the dashboard are preserved.
const (
	DetailCheckID   = "checkId"
	DetailSubjectID = "subjectId"
	DetailResult    = "result"
	DetailDetails   = "details"
	DetailUpdatedAt = "updatedAt"
)

// DateLayout is the wire and storage format of Investor.LastUpdated.
const DateLayout = "2006-01-02"

// VerificationDetails is the free-form JSON blob correlating an investor with
// its latest provider check.
type VerificationDetails map[string]any

// CheckID returns the correlated provider check id, if any.
func (d VerificationDetails) CheckID() string {
	v, _ := d[DetailCheckID].(string)
	return v
}

func (d VerificationDetails) SubjectID() string {
	v, _ := d[DetailSubjectID].(string)
	return v
}

// Merge returns a copy of d with patch applied on top. d is not modified.
func (d VerificationDetails) Merge(patch VerificationDetails) VerificationDetails {
	out := make(VerificationDetails, len(d)+len(patch))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func (d VerificationDetails) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *VerificationDetails) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = VerificationDetails{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("verification_details: unsupported type %T", src)
	}
	out := VerificationDetails{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("verification_details: %w", err)
	}
	*d = out
	return nil
}

// Investor is the record the engine reads subject data from and writes the
// canonical status to.
type Investor struct {
	ID                  uuid.UUID           `db:"investor_id"`
	Name                string              `db:"name"`
	Email               string              `db:"email"`
	Type                string              `db:"type"`
	WalletAddress       *string             `db:"wallet_address"`
	KYCStatus           Status              `db:"kyc_status"`
	LastUpdated         *time.Time          `db:"last_updated"`
	VerificationDetails VerificationDetails `db:"verification_details"`
	Version             int64               `db:"version"`
	CreatedAt           time.Time           `db:"created_at"`
	UpdatedAt           time.Time           `db:"updated_at"`
}

// NewInvestor creates an investor that has never been screened.
func NewInvestor(id uuid.UUID, name, email, investorType string, wallet *string, now time.Time) (*Investor, error) {
	if id == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "investor id is required")
	}
	if name == "" || email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "investor name and email are required")
	}
	return &Investor{
		ID:                  id,
		Name:                name,
		Email:               email,
		Type:                investorType,
		WalletAddress:       wallet,
		KYCStatus:           StatusNotStarted,
		VerificationDetails: VerificationDetails{},
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// CheckID returns the provider check currently correlated with the investor.
func (i *Investor) CheckID() string {
	return i.VerificationDetails.CheckID()
}

// CanReconcile verifies a callback for checkID still targets this investor.
// A newer screening replaces the correlation; results of the older check are
// then stale.
func (i *Investor) CanReconcile(checkID string) error {
	if current := i.CheckID(); current != checkID {
		return dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("investor is correlated with check %q, not %q", current, checkID))
	}
	return nil
}

// ApplyScreeningStarted records a newly created check.
func (i *Investor) ApplyScreeningStarted(checkID, subjectID string, status Status, details string, now time.Time) {
	i.applyStatus(status, now)
	i.VerificationDetails = i.VerificationDetails.Merge(VerificationDetails{
		DetailCheckID:   checkID,
		DetailSubjectID: subjectID,
		DetailDetails:   details,
		DetailUpdatedAt: now.UTC().Format(time.RFC3339),
	})
}

// ApplyReconciled records the mapped outcome of the correlated check.
func (i *Investor) ApplyReconciled(check *Check, status Status, details string, now time.Time) {
	i.applyStatus(status, now)
	patch := VerificationDetails{
		DetailCheckID:   check.ID,
		DetailDetails:   details,
		DetailUpdatedAt: now.UTC().Format(time.RFC3339),
	}
	if check.SubjectID != "" {
		patch[DetailSubjectID] = check.SubjectID
	}
	if check.Result != "" {
		patch[DetailResult] = string(check.Result)
	}
	i.VerificationDetails = i.VerificationDetails.Merge(patch)
}

// ApplyManualStatus records a status chosen by an operator. Verification
// details are left untouched.
func (i *Investor) ApplyManualStatus(status Status, now time.Time) {
	i.applyStatus(status, now)
}

func (i *Investor) applyStatus(status Status, now time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	i.KYCStatus = status
	i.LastUpdated = &day
	i.UpdatedAt = now
}

// FormatLastUpdated renders LastUpdated as YYYY-MM-DD, or "" when unset.
func (i *Investor) FormatLastUpdated() string {
	if i.LastUpdated == nil {
		return ""
	}
	return i.LastUpdated.Format(DateLayout)
}

// Clone returns a copy safe to mutate without affecting i.
func (i *Investor) Clone() *Investor {
	c := *i
	c.VerificationDetails = i.VerificationDetails.Merge(nil)
	if i.LastUpdated != nil {
		lu := *i.LastUpdated
		c.LastUpdated = &lu
	}
	if i.WalletAddress != nil {
		w := *i.WalletAddress
		c.WalletAddress = &w
	}
	return &c
}
