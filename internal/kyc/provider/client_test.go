package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"irdesk/internal/kyc/models"
	"irdesk/pkg/platform/circuit"
)

type ClientSuite struct {
	suite.Suite
	server   *httptest.Server
	handler  http.HandlerFunc
	requests atomic.Int32
	client   *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.requests.Store(0)
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.handler(w, r)
	}))
	s.client = NewClient(s.server.URL, "api-token",
		WithTimeout(2*time.Second),
		WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2))),
	)
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *ClientSuite) TestCreateSubject() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/applicants", r.URL.Path)
		s.Equal("Token token=api-token", r.Header.Get("Authorization"))

		var body map[string]any
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal("Ada", body["first_name"])
		s.Equal("Lovelace", body["last_name"])

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":         "app-1",
			"first_name": "Ada",
			"last_name":  "Lovelace",
			"created_at": "2026-01-02T03:04:05Z",
		})
	}

	subject, err := s.client.CreateSubject(context.Background(), models.SubjectInput{FirstName: "Ada", LastName: "Lovelace"})
	s.Require().NoError(err)
	s.Equal("app-1", subject.ID)
}

func (s *ClientSuite) TestCreateCheck() {
	s.Run("sends report names and company", func() {
		s.handler = func(w http.ResponseWriter, r *http.Request) {
			s.Equal("/checks", r.URL.Path)
			var body map[string]any
			s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
			s.Equal("app-1", body["applicant_id"])
			s.Equal([]any{"company_verification"}, body["report_names"])
			s.Equal("Acme Ltd", body["company"].(map[string]any)["name"])

			writeJSON(w, http.StatusCreated, map[string]any{
				"id":           "chk-1",
				"applicant_id": "app-1",
				"status":       "in_progress",
				"report_ids":   []string{"rep-1"},
			})
		}

		check, err := s.client.CreateCheck(context.Background(), models.CheckRequest{
			SubjectID:   "app-1",
			ReportNames: []string{"company_verification"},
			Company:     &models.Company{Name: "Acme Ltd"},
		})
		s.Require().NoError(err)
		s.Equal("chk-1", check.ID)
		s.Equal(models.CheckInProgress, check.Status)
		s.Equal([]string{"rep-1"}, check.ReportIDs)
	})

	s.Run("empty report list fails before any request", func() {
		before := s.requests.Load()
		_, err := s.client.CreateCheck(context.Background(), models.CheckRequest{SubjectID: "app-1"})
		s.Require().Error(err)
		s.Equal(ErrorInvalidRequest, GetCategory(err))
		s.False(IsRetryable(err))
		s.Equal(before, s.requests.Load())
	})
}

func (s *ClientSuite) TestGetCheckAndReport() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/checks/chk-1":
			writeJSON(w, http.StatusOK, map[string]any{
				"id": "chk-1", "status": "complete", "result": "clear", "report_ids": []string{"rep-1"},
			})
		case "/reports/rep-1":
			writeJSON(w, http.StatusOK, map[string]any{
				"id": "rep-1", "name": "document", "result": "clear", "sub_result": "clear",
				"breakdown": map[string]any{"age_validation": map[string]any{"result": "clear"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	check, err := s.client.GetCheck(context.Background(), "chk-1")
	s.Require().NoError(err)
	s.Equal(models.CheckComplete, check.Status)
	s.Equal(models.ResultClear, check.Result)

	report, err := s.client.GetReport(context.Background(), "rep-1")
	s.Require().NoError(err)
	s.Equal("document", report.Name)
	s.Equal("clear", report.SubResult)
	s.JSONEq(`{"age_validation":{"result":"clear"}}`, string(report.Breakdown))
}

func (s *ClientSuite) TestGenerateSDKToken() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/sdk_token", r.URL.Path)
		var body map[string]string
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal("app-1", body["applicant_id"])
		s.Equal("*://*/*", body["referrer"])
		writeJSON(w, http.StatusOK, map[string]string{"token": "sdk-abc"})
	}

	token, err := s.client.GenerateSDKToken(context.Background(), "app-1")
	s.Require().NoError(err)
	s.Equal("sdk-abc", token)
}

func (s *ClientSuite) TestErrorTaxonomy() {
	cases := []struct {
		name      string
		status    int
		category  ErrorCategory
		retryable bool
	}{
		{"server error is unavailable", http.StatusBadGateway, ErrorUnavailable, true},
		{"unauthorized is authentication", http.StatusUnauthorized, ErrorAuthentication, false},
		{"missing is not found", http.StatusNotFound, ErrorNotFound, false},
		{"throttled is rate limited", http.StatusTooManyRequests, ErrorRateLimited, true},
		{"unprocessable is bad data", http.StatusUnprocessableEntity, ErrorBadData, false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.client.breaker.Reset()
			s.handler = func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, map[string]any{
					"error": map[string]any{"type": "api_error", "message": "nope"},
				})
			}
			_, err := s.client.GetCheck(context.Background(), "chk-1")
			s.Require().Error(err)
			s.Equal(tc.category, GetCategory(err))
			s.Equal(tc.retryable, IsRetryable(err))
			s.Contains(err.Error(), "api_error: nope")
		})
	}
}

func (s *ClientSuite) TestUndecodableBodyIsBadData() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>"))
	}
	_, err := s.client.GetCheck(context.Background(), "chk-1")
	s.Equal(ErrorBadData, GetCategory(err))
}

func (s *ClientSuite) TestBreakerFailsFastAfterOutage() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	for i := 0; i < 2; i++ {
		_, err := s.client.GetCheck(context.Background(), "chk-1")
		s.Equal(ErrorUnavailable, GetCategory(err))
	}
	sent := s.requests.Load()

	_, err := s.client.GetCheck(context.Background(), "chk-1")
	s.Equal(ErrorUnavailable, GetCategory(err))
	s.Contains(err.Error(), "circuit open")
	s.Equal(sent, s.requests.Load())
}

func TestClient_TimeoutIsCategorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", WithTimeout(20*time.Millisecond))
	_, err := client.GetCheck(context.Background(), "chk-1")
	require.Error(t, err)
	assert.Equal(t, ErrorTimeout, GetCategory(err))
	assert.True(t, IsRetryable(err))
}

func TestSandbox_Lifecycle(t *testing.T) {
	ctx := context.Background()
	sb := NewSandbox()

	subject, err := sb.CreateSubject(ctx, models.SubjectInput{FirstName: "Grace", LastName: "Consider-Hopper"})
	require.NoError(t, err)

	check, err := sb.CreateCheck(ctx, models.CheckRequest{SubjectID: subject.ID, ReportNames: models.ReportNamesFor(models.KindIndividual)})
	require.NoError(t, err)
	assert.Equal(t, models.CheckInProgress, check.Status)
	assert.Len(t, check.ReportIDs, 2)

	done, err := sb.GetCheck(ctx, check.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CheckComplete, done.Status)
	assert.Equal(t, models.ResultConsider, done.Result)

	report, err := sb.GetReport(ctx, done.ReportIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.ReportDocument, report.Name)

	_, err = sb.CreateCheck(ctx, models.CheckRequest{SubjectID: subject.ID})
	assert.Equal(t, ErrorInvalidRequest, GetCategory(err))

	token, err := sb.GenerateSDKToken(ctx, subject.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}
