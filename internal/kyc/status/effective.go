package status

import (
	"time"

	"irdesk/internal/kyc/models"
	dErrors "irdesk/pkg/domain-errors"
)

// DefaultValidityWindow is how long an approval stays valid.
const DefaultValidityWindow = 365 * 24 * time.Hour

// Effective returns the status to display or act upon. An approval older than
// window reads as expired; everything else is returned unchanged. The stored
// value is never modified.
func Effective(stored models.Status, lastUpdated *time.Time, now time.Time, window time.Duration) models.Status {
	if stored != models.StatusApproved || lastUpdated == nil {
		return stored
	}
	if window <= 0 {
		window = DefaultValidityWindow
	}
	if now.Sub(*lastUpdated) > window {
		return models.StatusExpired
	}
	return stored
}

// NeedsRescreening reports whether the dashboard should offer a new screening
// for an effective status.
func NeedsRescreening(effective models.Status) bool {
	switch effective {
	case models.StatusExpired, models.StatusFailed, models.StatusNotStarted:
		return true
	}
	return false
}

// ManualPolicy governs statuses written directly by operators.
type ManualPolicy struct {
	// AllowExpired keeps the legacy behavior of letting operators store
	// "expired" directly.
	AllowExpired bool
}

// Validate rejects manual writes the policy does not permit.
func (p ManualPolicy) Validate(s models.Status) error {
	if !s.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown kyc status")
	}
	if s == models.StatusExpired && !p.AllowExpired {
		return dErrors.New(dErrors.CodeValidation, "expired is derived from the validity window and cannot be set directly")
	}
	return nil
}
