package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"irdesk/internal/kyc/models"
)

// Sandbox is an in-process provider for local runs without credentials.
//
// Checks start in_progress and complete on the first GetCheck. Subjects whose
// last name contains "consider" complete with a consider result.
type Sandbox struct {
	mu       sync.Mutex
	now      func() time.Time
	subjects map[string]*models.Subject
	checks   map[string]*models.Check
	reports  map[string]*models.Report
	results  map[string]models.CheckResult
}

func NewSandbox() *Sandbox {
	return &Sandbox{
		now:      time.Now,
		subjects: make(map[string]*models.Subject),
		checks:   make(map[string]*models.Check),
		reports:  make(map[string]*models.Report),
		results:  make(map[string]models.CheckResult),
	}
}

func (s *Sandbox) CreateSubject(_ context.Context, in models.SubjectInput) (*models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject := &models.Subject{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		DOB:       in.DOB,
		Address:   in.Address,
		CreatedAt: s.now().UTC(),
	}
	s.subjects[subject.ID] = subject
	copied := *subject
	return &copied, nil
}

func (s *Sandbox) CreateCheck(_ context.Context, req models.CheckRequest) (*models.Check, error) {
	if req.SubjectID == "" {
		return nil, NewError(ErrorInvalidRequest, opCreateCheck, "subject id is required", nil)
	}
	if len(req.ReportNames) == 0 {
		return nil, NewError(ErrorInvalidRequest, opCreateCheck, "at least one report name is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subject, ok := s.subjects[req.SubjectID]
	if !ok {
		return nil, NewError(ErrorNotFound, opCreateCheck, fmt.Sprintf("applicant %s not found", req.SubjectID), nil)
	}
	result := models.ResultClear
	if strings.Contains(strings.ToLower(subject.LastName), "consider") {
		result = models.ResultConsider
	}

	check := &models.Check{
		ID:        uuid.NewString(),
		SubjectID: req.SubjectID,
		Status:    models.CheckInProgress,
		CreatedAt: s.now().UTC(),
	}
	for _, name := range req.ReportNames {
		report := &models.Report{
			ID:        uuid.NewString(),
			Name:      name,
			Result:    result,
			CreatedAt: check.CreatedAt,
		}
		s.reports[report.ID] = report
		check.ReportIDs = append(check.ReportIDs, report.ID)
	}
	s.checks[check.ID] = check
	// revealed on completion
	s.results[check.ID] = result

	copied := *check
	return &copied, nil
}

func (s *Sandbox) GetCheck(_ context.Context, checkID string) (*models.Check, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	check, ok := s.checks[checkID]
	if !ok {
		return nil, NewError(ErrorNotFound, opGetCheck, fmt.Sprintf("check %s not found", checkID), nil)
	}
	if check.Status == models.CheckInProgress {
		completed := s.now().UTC()
		check.Status = models.CheckComplete
		check.Result = s.results[checkID]
		check.CompletedAt = &completed
	}
	copied := *check
	return &copied, nil
}

func (s *Sandbox) GetReport(_ context.Context, reportID string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[reportID]
	if !ok {
		return nil, NewError(ErrorNotFound, opGetReport, fmt.Sprintf("report %s not found", reportID), nil)
	}
	copied := *report
	return &copied, nil
}

func (s *Sandbox) GenerateSDKToken(_ context.Context, subjectID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subjects[subjectID]; !ok {
		return "", NewError(ErrorNotFound, opSDKToken, fmt.Sprintf("applicant %s not found", subjectID), nil)
	}
	return "sandbox-sdk-" + subjectID, nil
}
