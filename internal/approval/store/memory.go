package store

import (
	"context"
	"sync"

	"vigil/internal/approval/models"
	id "vigil/pkg/domain"
	"vigil/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	chains map[id.ReportID][]*models.Approval
}

func NewInMemory() *InMemory {
	return &InMemory{chains: make(map[id.ReportID][]*models.Approval)}
}

func (s *InMemory) InitChain(_ context.Context, reportID id.ReportID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chains[reportID]; exists {
		return sentinel.ErrConflict
	}
	chain := make([]*models.Approval, 0, len(models.Chain))
	for _, level := range models.Chain {
		chain = append(chain, &models.Approval{
			ReportID: reportID,
			Level:    level,
			Status:   models.StatusPending,
		})
	}
	s.chains[reportID] = chain
	return nil
}

func (s *InMemory) ListForReport(_ context.Context, reportID id.ReportID) ([]*models.Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain, ok := s.chains[reportID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]*models.Approval, 0, len(chain))
	for _, approval := range chain {
		cloned := *approval
		out = append(out, &cloned)
	}
	return out, nil
}

func (s *InMemory) Update(_ context.Context, approval *models.Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, ok := s.chains[approval.ReportID]
	if !ok {
		return sentinel.ErrNotFound
	}
	for i, existing := range chain {
		if existing.Level == approval.Level {
			cloned := *approval
			chain[i] = &cloned
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemory) ResetChain(_ context.Context, reportID id.ReportID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, ok := s.chains[reportID]
	if !ok {
		return sentinel.ErrNotFound
	}
	for _, approval := range chain {
		approval.Status = models.StatusPending
		approval.DecidedBy = nil
		approval.DecidedAt = nil
		approval.Comment = ""
	}
	return nil
}
