package models

import (
	"encoding/json"
	"time"
)

// Address of a verification subject.
type Address struct {
	BuildingNumber string `json:"building_number,omitempty"`
	Street         string `json:"street,omitempty"`
	Town           string `json:"town,omitempty"`
	Postcode       string `json:"postcode,omitempty"`
	Country        string `json:"country,omitempty"`
}

// SubjectInput is the applicant profile sent when creating a subject.
type SubjectInput struct {
	FirstName string   `json:"first_name" validate:"required"`
	LastName  string   `json:"last_name" validate:"required"`
	Email     string   `json:"email,omitempty" validate:"omitempty,email"`
	DOB       string   `json:"dob,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Address   *Address `json:"address,omitempty"`
}

// Subject is the provider's record of the person or entity being checked.
// Immutable once created.
type Subject struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
	DOB       string    `json:"dob,omitempty"`
	Address   *Address  `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Company identifies a business for company_verification reports.
type Company struct {
	Name               string `json:"name" validate:"required"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Country            string `json:"country,omitempty"`
}

// CheckRequest asks the provider to run reports against a subject.
type CheckRequest struct {
	SubjectID       string
	ReportNames     []string
	Company         *Company
	ExtraSubjectIDs []string
}

// Check is one verification attempt.
type Check struct {
	ID          string      `json:"id"`
	SubjectID   string      `json:"applicant_id"`
	Status      CheckStatus `json:"status"`
	Result      CheckResult `json:"result,omitempty"`
	ReportIDs   []string    `json:"report_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Report is a single sub-check result. Immutable once fetched.
type Report struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Result    CheckResult     `json:"result,omitempty"`
	SubResult string          `json:"sub_result,omitempty"`
	Breakdown json.RawMessage `json:"breakdown,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
