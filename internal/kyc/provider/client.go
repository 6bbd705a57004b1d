// Package provider talks to the external identity-verification provider.
//
// Client speaks the provider's REST API (applicants, checks, reports and SDK
// tokens). Every operation is a single outbound request; failures come back
// as *Error values carrying a normalized category. The client never retries.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"irdesk/internal/kyc/models"
	"irdesk/internal/platform/metrics"
	"irdesk/pkg/platform/circuit"
)

const (
	opCreateSubject = "create_subject"
	opCreateCheck   = "create_check"
	opGetCheck      = "get_check"
	opGetReport     = "get_report"
	opSDKToken      = "generate_sdk_token"

	maxResponseBytes = 1 << 20
	defaultTimeout   = 30 * time.Second
)

// Client is the HTTP implementation of the provider operations.
type Client struct {
	baseURL    string
	token      string
	referrer   string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuit.Breaker
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

// WithRateLimit paces outbound calls with a token bucket.
func WithRateLimit(rps float64, burst int) Option {
	return func(cl *Client) {
		if rps > 0 {
			cl.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func WithReferrer(referrer string) Option {
	return func(cl *Client) {
		cl.referrer = referrer
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient builds a client for baseURL authenticated with token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		referrer:   "*://*/*",
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		breaker:    circuit.New("verification-provider"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createCheckBody struct {
	ApplicantID  string          `json:"applicant_id"`
	ReportNames  []string        `json:"report_names"`
	Company      *models.Company `json:"company,omitempty"`
	ApplicantIDs []string        `json:"applicant_ids,omitempty"`
}

type sdkTokenBody struct {
	ApplicantID string `json:"applicant_id"`
	Referrer    string `json:"referrer"`
}

// CreateSubject registers the applicant with the provider.
func (c *Client) CreateSubject(ctx context.Context, in models.SubjectInput) (*models.Subject, error) {
	var subject models.Subject
	if err := c.do(ctx, opCreateSubject, http.MethodPost, "/applicants", in, &subject); err != nil {
		return nil, err
	}
	return &subject, nil
}

// CreateCheck starts a check for req.SubjectID. An empty report list is
// rejected without contacting the provider.
func (c *Client) CreateCheck(ctx context.Context, req models.CheckRequest) (*models.Check, error) {
	if req.SubjectID == "" {
		return nil, NewError(ErrorInvalidRequest, opCreateCheck, "subject id is required", nil)
	}
	if len(req.ReportNames) == 0 {
		return nil, NewError(ErrorInvalidRequest, opCreateCheck, "at least one report name is required", nil)
	}
	body := createCheckBody{
		ApplicantID:  req.SubjectID,
		ReportNames:  req.ReportNames,
		Company:      req.Company,
		ApplicantIDs: req.ExtraSubjectIDs,
	}
	var check models.Check
	if err := c.do(ctx, opCreateCheck, http.MethodPost, "/checks", body, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// GetCheck fetches the authoritative state of a check.
func (c *Client) GetCheck(ctx context.Context, checkID string) (*models.Check, error) {
	if checkID == "" {
		return nil, NewError(ErrorInvalidRequest, opGetCheck, "check id is required", nil)
	}
	var check models.Check
	if err := c.do(ctx, opGetCheck, http.MethodGet, "/checks/"+url.PathEscape(checkID), nil, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

func (c *Client) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	if reportID == "" {
		return nil, NewError(ErrorInvalidRequest, opGetReport, "report id is required", nil)
	}
	var report models.Report
	if err := c.do(ctx, opGetReport, http.MethodGet, "/reports/"+url.PathEscape(reportID), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GenerateSDKToken issues a short-lived token for the provider's applicant
// capture flow.
func (c *Client) GenerateSDKToken(ctx context.Context, subjectID string) (string, error) {
	if subjectID == "" {
		return "", NewError(ErrorInvalidRequest, opSDKToken, "subject id is required", nil)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, opSDKToken, http.MethodPost, "/sdk_token", sdkTokenBody{ApplicantID: subjectID, Referrer: c.referrer}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", NewError(ErrorBadData, opSDKToken, "response carried no token", nil)
	}
	return resp.Token, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(GetCategory(err))
		}
		c.metrics.ObserveProviderCall(op, outcome, time.Since(start))
	}()

	if !c.breaker.Allow() {
		return NewError(ErrorUnavailable, op, "circuit open", nil)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return NewError(ErrorTimeout, op, "rate limiter wait aborted", err)
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return NewError(ErrorInternal, op, "encode request", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return NewError(ErrorInternal, op, "build request", err)
	}
	req.Header.Set("Authorization", "Token token="+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx, op)
		if isTimeout(err) {
			return NewError(ErrorTimeout, op, "request timed out", err)
		}
		return NewError(ErrorUnavailable, op, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recordFailure(ctx, op)
		return NewError(ErrorUnavailable, op, "read response", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		category := categoryForStatus(resp.StatusCode)
		if category == ErrorUnavailable || category == ErrorTimeout {
			c.recordFailure(ctx, op)
		} else {
			c.recordSuccess()
		}
		pe := NewError(category, op, errorMessage(resp.StatusCode, raw), nil)
		pe.StatusCode = resp.StatusCode
		return pe
	}
	c.recordSuccess()

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return NewError(ErrorBadData, op, "decode response", err)
	}
	return nil
}

// errorMessage extracts the provider's error message from an error body of
// the form {"error":{"type":...,"message":...}}.
func errorMessage(status int, raw []byte) string {
	if msg := gjson.GetBytes(raw, "error.message"); msg.Exists() && msg.String() != "" {
		if typ := gjson.GetBytes(raw, "error.type").String(); typ != "" {
			return fmt.Sprintf("%s: %s", typ, msg.String())
		}
		return msg.String()
	}
	return fmt.Sprintf("unexpected status %d", status)
}

func (c *Client) recordFailure(ctx context.Context, op string) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "provider circuit opened",
			"breaker", c.breaker.Name(),
			"operation", op,
		)
		c.metrics.SetBreakerOpen(c.breaker.Name(), true)
	}
}

func (c *Client) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("provider circuit closed", "breaker", c.breaker.Name())
		c.metrics.SetBreakerOpen(c.breaker.Name(), false)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
