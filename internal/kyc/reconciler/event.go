package reconciler

import (
	"github.com/tidwall/gjson"

	dErrors "irdesk/pkg/domain-errors"
)

// ResourceCheck is the only resource type the reconciler acts on.
const ResourceCheck = "check"

// Event is the part of a provider webhook the reconciler needs. The payload
// only points at a check; its embedded result is never trusted.
type Event struct {
	ResourceType string
	Action       string
	ObjectID     string
	// ObjectStatus is the status the provider claimed at send time. Logged only.
	ObjectStatus string
}

// ParseEvent extracts the webhook pointer fields from a raw body.
func ParseEvent(body []byte) (Event, error) {
	if !gjson.ValidBytes(body) {
		return Event{}, dErrors.New(dErrors.CodeBadRequest, "webhook body is not valid JSON")
	}
	payload := gjson.GetBytes(body, "payload")
	if !payload.IsObject() {
		return Event{}, dErrors.New(dErrors.CodeBadRequest, "webhook body has no payload")
	}
	return Event{
		ResourceType: payload.Get("resource_type").String(),
		Action:       payload.Get("action").String(),
		ObjectID:     payload.Get("object.id").String(),
		ObjectStatus: payload.Get("object.status").String(),
	}, nil
}
