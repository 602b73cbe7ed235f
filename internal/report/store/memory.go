package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"vigil/internal/report/models"
	id "vigil/pkg/domain"
	"vigil/pkg/platform/sentinel"
)

// InMemory is a map-backed Store for tests and local runs. It ignores the
// ambient transaction; every write is immediately visible.
type InMemory struct {
	mu        sync.RWMutex
	reports   map[id.ReportID]*models.Report
	answers   map[id.ReportID]map[id.QuestionVersionID]*models.Answer
	aspects   map[id.ReportID]map[id.AspectVersionID]*models.AspectResult
	summaries map[id.ReportID]*models.Summary
}

func NewInMemory() *InMemory {
	return &InMemory{
		reports:   make(map[id.ReportID]*models.Report),
		answers:   make(map[id.ReportID]map[id.QuestionVersionID]*models.Answer),
		aspects:   make(map[id.ReportID]map[id.AspectVersionID]*models.AspectResult),
		summaries: make(map[id.ReportID]*models.Summary),
	}
}

func (s *InMemory) CreateReport(_ context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		return sentinel.ErrConflict
	}
	cloned := *report
	s.reports[report.ID] = &cloned
	return nil
}

func (s *InMemory) GetReport(_ context.Context, reportID id.ReportID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[reportID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *report
	return &cloned, nil
}

func (s *InMemory) UpdateReportStatus(_ context.Context, reportID id.ReportID, status models.Status, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[reportID]
	if !ok {
		return sentinel.ErrNotFound
	}
	report.Status = status
	report.UpdatedAt = updatedAt
	return nil
}

func (s *InMemory) ListReportsForBorrower(_ context.Context, borrowerID id.BorrowerID) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Report
	for _, report := range s.reports {
		if report.BorrowerID == borrowerID {
			cloned := *report
			out = append(out, &cloned)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) UpsertAnswer(_ context.Context, answer *models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[answer.ReportID]; !ok {
		return sentinel.ErrNotFound
	}
	byQuestion, ok := s.answers[answer.ReportID]
	if !ok {
		byQuestion = make(map[id.QuestionVersionID]*models.Answer)
		s.answers[answer.ReportID] = byQuestion
	}
	cloned := *answer
	if existing, ok := byQuestion[answer.QuestionV]; ok {
		cloned.ID = existing.ID
	}
	byQuestion[answer.QuestionV] = &cloned
	return nil
}

func (s *InMemory) ListAnswers(_ context.Context, reportID id.ReportID) ([]*models.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Answer
	for _, answer := range s.answers[reportID] {
		cloned := *answer
		out = append(out, &cloned)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QuestionV.String() < out[j].QuestionV.String()
	})
	return out, nil
}

func (s *InMemory) UpsertAspectResult(_ context.Context, result *models.AspectResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byAspect, ok := s.aspects[result.ReportID]
	if !ok {
		byAspect = make(map[id.AspectVersionID]*models.AspectResult)
		s.aspects[result.ReportID] = byAspect
	}
	cloned := *result
	byAspect[result.AspectV] = &cloned
	return nil
}

func (s *InMemory) ListAspectResults(_ context.Context, reportID id.ReportID) ([]*models.AspectResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.AspectResult
	for _, result := range s.aspects[reportID] {
		cloned := *result
		out = append(out, &cloned)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AspectV.String() < out[j].AspectV.String()
	})
	return out, nil
}

func (s *InMemory) UpsertSummary(_ context.Context, summary *models.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := *summary
	s.summaries[summary.ReportID] = &cloned
	return nil
}

func (s *InMemory) GetSummary(_ context.Context, reportID id.ReportID) (*models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[reportID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *summary
	return &cloned, nil
}
