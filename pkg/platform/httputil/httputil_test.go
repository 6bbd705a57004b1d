package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "irdesk/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "internal_error", body["error"])
		_, ok := body["error_description"]
		assert.False(t, ok)
	})

	t.Run("conflict includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeConflict, "screening already in progress"))

		require.Equal(t, http.StatusConflict, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "conflict", body["error"])
		assert.Equal(t, "screening already in progress", body["error_description"])
	})

	t.Run("uncoded error is treated as internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Kind string `json:"kind"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"individual"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "individual", dst.Kind)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"individual","extra":1}`))
	err := DecodeJSON(r, &dst)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
