// Package service owns the watchlist lifecycle and monitoring follow-up.
//
// Lifecycle transitions driven by scoring (EnsureActive, ArchiveForBorrower)
// are invoked by the report recalculation inside its transaction; note and
// action item operations are user-driven.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vigil/internal/audit"
	"vigil/internal/watchlist/models"
	"vigil/internal/watchlist/store"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/sentinel"
	"vigil/pkg/requestcontext"
)

type Service struct {
	store   store.Store
	auditor audit.Recorder
	logger  *slog.Logger
}

func New(store store.Store, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{store: store, auditor: auditor, logger: logger}
}

// EnsureActive guarantees exactly one ACTIVE watchlist for the borrower.
// Returns true when a new record was created; an existing active record is
// left untouched so repeated WATCHLIST classifications never duplicate.
func (s *Service) EnsureActive(ctx context.Context, borrowerID id.BorrowerID, sourceReport id.ReportID) (bool, error) {
	if _, err := s.store.ActiveForBorrower(ctx, borrowerID); err == nil {
		return false, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return false, dErrors.Wrap(dErrors.CodeInternal, "failed to check active watchlist", err)
	}

	watchlist := &models.Watchlist{
		ID:           id.WatchlistID(uuid.New()),
		BorrowerID:   borrowerID,
		Status:       models.StatusActive,
		SourceReport: sourceReport,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, watchlist); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// A concurrent recalculation won the race; the invariant holds.
			return false, nil
		}
		return false, dErrors.Wrap(dErrors.CodeInternal, "failed to create watchlist", err)
	}

	if err := s.auditor.Record(ctx, audit.Event{
		SubjectType: "watchlist",
		SubjectID:   watchlist.ID.String(),
		Action:      audit.ActionWatchlistCreated,
		ActorID:     requestcontext.ActorID(ctx),
		RequestID:   requestcontext.RequestID(ctx),
		Metadata: map[string]any{
			"borrower_id":      borrowerID.String(),
			"source_report_id": sourceReport.String(),
		},
	}); err != nil {
		return false, dErrors.Wrap(dErrors.CodeInternal, "failed to audit watchlist creation", err)
	}
	return true, nil
}

// ArchiveForBorrower transitions every ACTIVE watchlist for the borrower to
// ARCHIVED, stamped with the resolver and timestamp. Called when a report
// classifies SAFE.
func (s *Service) ArchiveForBorrower(ctx context.Context, borrowerID id.BorrowerID, resolvedBy id.UserID) (int, error) {
	archived, err := s.store.ArchiveActiveForBorrower(ctx, borrowerID, resolvedBy, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "failed to archive watchlists", err)
	}
	if archived == 0 {
		return 0, nil
	}

	if err := s.auditor.Record(ctx, audit.Event{
		SubjectType: "borrower",
		SubjectID:   borrowerID.String(),
		Action:      audit.ActionWatchlistArchived,
		ActorID:     resolvedBy,
		RequestID:   requestcontext.RequestID(ctx),
		Metadata:    map[string]any{"archived": archived},
	}); err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "failed to audit watchlist archival", err)
	}
	return archived, nil
}

// ActiveForBorrower returns the borrower's active watchlist, if any.
func (s *Service) ActiveForBorrower(ctx context.Context, borrowerID id.BorrowerID) (*models.Watchlist, error) {
	watchlist, err := s.store.ActiveForBorrower(ctx, borrowerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no active watchlist for borrower")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load watchlist", err)
	}
	return watchlist, nil
}

// AddNote attaches a monitoring note for a period to an active watchlist.
func (s *Service) AddNote(ctx context.Context, watchlistID id.WatchlistID, period, body string) (*models.MonitoringNote, error) {
	if period == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "period is required")
	}

	watchlist, err := s.store.Get(ctx, watchlistID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "watchlist not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load watchlist", err)
	}
	if watchlist.Status != models.StatusActive {
		return nil, dErrors.New(dErrors.CodeInvalidState, "monitoring notes require an active watchlist")
	}

	note := &models.MonitoringNote{
		ID:          id.NoteID(uuid.New()),
		WatchlistID: watchlistID,
		Period:      period,
		Body:        body,
		CreatedBy:   requestcontext.ActorID(ctx),
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create monitoring note", err)
	}
	return note, nil
}

// AddActionItem records a follow-up under a note.
func (s *Service) AddActionItem(ctx context.Context, noteID id.NoteID, category models.ItemCategory, description string, dueDate *time.Time) (*models.ActionItem, error) {
	if description == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "action item description is required")
	}
	now := requestcontext.Now(ctx)
	item := &models.ActionItem{
		ID:          id.ActionItemID(uuid.New()),
		NoteID:      noteID,
		Category:    category,
		Description: description,
		Status:      models.ItemPending,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateActionItem(ctx, item); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "monitoring note not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create action item", err)
	}
	return item, nil
}

// TransitionActionItem moves an item along its lifecycle, rejecting
// backwards or skipped steps.
func (s *Service) TransitionActionItem(ctx context.Context, itemID id.ActionItemID, to models.ItemStatus) error {
	item, err := s.store.GetActionItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "action item not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to load action item", err)
	}
	if !models.CanTransition(item.Status, to) {
		return dErrors.New(dErrors.CodeInvalidState, "illegal action item transition")
	}
	if err := s.store.UpdateActionItemStatus(ctx, itemID, to, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to update action item", err)
	}
	return nil
}

// CarryForward clones unresolved action items from the watchlist's earlier
// notes into a fresh note for the new period, categorized as
// previous_period work. Completed items stay behind.
func (s *Service) CarryForward(ctx context.Context, watchlistID id.WatchlistID, newPeriod string) (*models.MonitoringNote, int, error) {
	note, err := s.AddNote(ctx, watchlistID, newPeriod, "carried forward from prior period")
	if err != nil {
		return nil, 0, err
	}

	notes, err := s.store.ListNotes(ctx, watchlistID)
	if err != nil {
		return nil, 0, dErrors.Wrap(dErrors.CodeInternal, "failed to list notes", err)
	}

	carried := 0
	now := requestcontext.Now(ctx)
	for _, prior := range notes {
		if prior.ID == note.ID || prior.Period == newPeriod {
			continue
		}
		items, err := s.store.ListActionItems(ctx, prior.ID)
		if err != nil {
			return nil, 0, dErrors.Wrap(dErrors.CodeInternal, "failed to list action items", err)
		}
		for _, item := range items {
			if item.Status.Resolved() {
				continue
			}
			clone := &models.ActionItem{
				ID:          id.ActionItemID(uuid.New()),
				NoteID:      note.ID,
				Category:    models.CategoryPreviousPeriod,
				Description: item.Description,
				Status:      models.ItemPending,
				DueDate:     item.DueDate,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.store.CreateActionItem(ctx, clone); err != nil {
				return nil, 0, dErrors.Wrap(dErrors.CodeInternal, "failed to carry action item forward", err)
			}
			carried++
		}
	}

	s.logger.InfoContext(ctx, "action items carried forward",
		"watchlist_id", watchlistID,
		"period", newPeriod,
		"carried", carried,
	)
	return note, carried, nil
}
