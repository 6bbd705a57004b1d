package audit

import "time"

// Category selects retention and routing for an event.
type Category string

const (
	// CategoryCompliance covers status changes with regulatory significance.
	CategoryCompliance Category = "compliance"

	// CategorySecurity covers rejected callbacks and access violations.
	CategorySecurity Category = "security"

	// CategoryOperations covers routine workflow progress.
	CategoryOperations Category = "operations"
)

type Action string

const (
	ActionInvestorCreated     Action = "investor_created"
	ActionVerificationStarted Action = "verification_started"
	ActionVerificationFailed  Action = "verification_failed"
	ActionStatusReconciled    Action = "kyc_status_reconciled"
	ActionStatusSetManually   Action = "kyc_status_set_manually"
	ActionSDKTokenIssued      Action = "sdk_token_issued"
	ActionWebhookRejected     Action = "webhook_signature_rejected"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	ID         string    `json:"id"`
	Category   Category  `json:"category"`
	Action     Action    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	InvestorID string    `json:"investor_id,omitempty"`
	CheckID    string    `json:"check_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	// ActorID is the admin subject, or "system" for callbacks and polling.
	ActorID   string `json:"actor_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
