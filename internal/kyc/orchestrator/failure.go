package orchestrator

import "irdesk/internal/kyc/provider"

// FailureType groups provider failures the way the dashboard presents them.
type FailureType string

const (
	FailureNetwork       FailureType = "network"
	FailureAuthorization FailureType = "authorization"
	FailureValidation    FailureType = "validation"
	FailureDatabase      FailureType = "database"
	FailureKYCService    FailureType = "kyc_service"
	FailureUnknown       FailureType = "unknown"
)

// Failure is the user-facing descriptor attached to a failed screening.
type Failure struct {
	Type            FailureType `json:"type"`
	Message         string      `json:"message"`
	ResolutionSteps []string    `json:"resolution_steps"`
	Retryable       bool        `json:"retryable"`
}

var failures = map[FailureType]Failure{
	FailureNetwork: {
		Type:    FailureNetwork,
		Message: "Network connection error",
		ResolutionSteps: []string{
			"Check your internet connection",
			"Verify the server is running",
			"Try again in a few moments",
		},
		Retryable: true,
	},
	FailureAuthorization: {
		Type:    FailureAuthorization,
		Message: "Authorization error",
		ResolutionSteps: []string{
			"Verify you have the correct permissions",
			"Try logging out and back in",
			"Contact your administrator if the problem persists",
		},
	},
	FailureValidation: {
		Type:    FailureValidation,
		Message: "Validation error",
		ResolutionSteps: []string{
			"Check the input data for errors",
			"Ensure all required fields are filled correctly",
		},
		Retryable: true,
	},
	FailureDatabase: {
		Type:    FailureDatabase,
		Message: "Database error",
		ResolutionSteps: []string{
			"Try again with different data",
			"Contact support if the problem persists",
		},
	},
	FailureKYCService: {
		Type:    FailureKYCService,
		Message: "KYC service error",
		ResolutionSteps: []string{
			"Verify the KYC service is available",
			"Check investor information for accuracy",
			"Try screening again in a few minutes",
		},
		Retryable: true,
	},
	FailureUnknown: {
		Type:    FailureUnknown,
		Message: "An unexpected error occurred",
		ResolutionSteps: []string{
			"Try again",
			"Contact support if the problem persists",
		},
		Retryable: true,
	},
}

// FailureFor classifies err into a descriptor. Provider errors are classified
// by category; anything else is unknown.
func FailureFor(err error) *Failure {
	return failureOf(failureType(err))
}

// failureOf returns a copy of the descriptor that callers may modify.
func failureOf(t FailureType) *Failure {
	f := failures[t]
	f.ResolutionSteps = append([]string(nil), f.ResolutionSteps...)
	return &f
}

func failureType(err error) FailureType {
	switch provider.GetCategory(err) {
	case provider.ErrorTimeout:
		return FailureNetwork
	case provider.ErrorAuthentication:
		return FailureAuthorization
	case provider.ErrorBadData, provider.ErrorInvalidRequest:
		return FailureValidation
	case provider.ErrorUnavailable, provider.ErrorRateLimited, provider.ErrorNotFound:
		return FailureKYCService
	}
	return FailureUnknown
}
