// Package audit captures immutable action entries for every recalculation
// and watchlist transition. The core never persists audit rows directly; it
// calls a Recorder and the configured store decides where entries land.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "vigil/pkg/domain"
)

// Action names the audited operation.
type Action string

const (
	ActionReportRecalculated  Action = "report.recalculated"
	ActionSummaryOverridden   Action = "report.summary_overridden"
	ActionWatchlistCreated    Action = "watchlist.created"
	ActionWatchlistArchived   Action = "watchlist.archived"
	ActionApprovalDecided     Action = "approval.decided"
	ActionApprovalChainReset  Action = "approval.chain_reset"
	ActionReportFinalApproved Action = "report.final_approved"
)

// Event is one immutable audit entry. Metadata carries action-specific
// detail (scores, classifications, prior status) as loosely-typed values.
type Event struct {
	ID          uuid.UUID
	Timestamp   time.Time
	SubjectType string
	SubjectID   string
	Action      Action
	ActorID     id.UserID
	RequestID   string
	Metadata    map[string]any
}

// Recorder is the audit hook injected into services. Implementations must
// respect an ambient transaction in ctx so audit rows commit or roll back
// with the state change they describe.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Store persists audit entries. Append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectType, subjectID string) ([]Event, error)
}

// Service stamps and forwards events to the store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Record(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return s.store.Append(ctx, event)
}

func (s *Service) List(ctx context.Context, subjectType, subjectID string) ([]Event, error) {
	return s.store.ListBySubject(ctx, subjectType, subjectID)
}
