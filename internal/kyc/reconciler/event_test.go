package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "irdesk/pkg/domain-errors"
)

func TestParseEvent(t *testing.T) {
	t.Run("extracts the check pointer and ignores the embedded result", func(t *testing.T) {
		body := []byte(`{
			"payload": {
				"resource_type": "check",
				"action": "check.completed",
				"object": {
					"id": "chk-123",
					"status": "complete",
					"result": "clear",
					"href": "https://api.onfido.com/v3/checks/chk-123"
				}
			}
		}`)

		ev, err := ParseEvent(body)
		require.NoError(t, err)
		assert.Equal(t, Event{
			ResourceType: "check",
			Action:       "check.completed",
			ObjectID:     "chk-123",
			ObjectStatus: "complete",
		}, ev)
	})

	t.Run("missing object id parses to an empty pointer", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"payload":{"resource_type":"check","action":"check.started","object":{}}}`))
		require.NoError(t, err)
		assert.Empty(t, ev.ObjectID)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{"payload":`))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("no payload", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{"event":"check.completed"}`))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
