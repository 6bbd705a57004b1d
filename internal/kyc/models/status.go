package models

// Status is the canonical KYC status stored on an investor.
type Status string

const (
	StatusApproved   Status = "approved"
	StatusPending    Status = "pending"
	StatusFailed     Status = "failed"
	StatusNotStarted Status = "not_started"
	StatusExpired    Status = "expired"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusApproved, StatusPending, StatusFailed, StatusNotStarted, StatusExpired:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// CheckStatus is the provider-native lifecycle state of a check.
type CheckStatus string

const (
	CheckInProgress        CheckStatus = "in_progress"
	CheckAwaitingApplicant CheckStatus = "awaiting_applicant"
	CheckComplete          CheckStatus = "complete"
	CheckWithdrawn         CheckStatus = "withdrawn"
)

// IsKnown reports whether the provider status is one of the documented values.
func (s CheckStatus) IsKnown() bool {
	switch s {
	case CheckInProgress, CheckAwaitingApplicant, CheckComplete, CheckWithdrawn:
		return true
	}
	return false
}

// IsTerminal reports whether the check can no longer change.
func (s CheckStatus) IsTerminal() bool {
	return s == CheckComplete || s == CheckWithdrawn
}

// CheckResult is the overall outcome of a complete check or a single report.
type CheckResult string

const (
	ResultClear    CheckResult = "clear"
	ResultConsider CheckResult = "consider"
)

// Kind selects the report set requested for a screening.
type Kind string

const (
	KindIndividual Kind = "individual"
	KindBusiness   Kind = "business"
)

func (k Kind) IsValid() bool {
	return k == KindIndividual || k == KindBusiness
}

// Report names understood by the provider.
const (
	ReportDocument              = "document"
	ReportFacialSimilarityPhoto = "facial_similarity_photo"
	ReportCompanyVerification   = "company_verification"
)

// ReportNamesFor returns the report set requested for kind.
func ReportNamesFor(kind Kind) []string {
	if kind == KindBusiness {
		return []string{ReportCompanyVerification}
	}
	return []string{ReportDocument, ReportFacialSimilarityPhoto}
}
