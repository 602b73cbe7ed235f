package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	auditmem "vigil/internal/audit/store/memory"

	"vigil/internal/audit"
	"vigil/internal/watchlist/models"
	"vigil/internal/watchlist/service"
	"vigil/internal/watchlist/store"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/requestcontext"
)

type WatchlistServiceSuite struct {
	suite.Suite
	svc     *service.Service
	store   *store.InMemory
	auditSt *auditmem.Store
	ctx     context.Context
	actor   id.UserID
	now     time.Time
}

func (s *WatchlistServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.auditSt = auditmem.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = service.New(s.store, audit.NewService(s.auditSt), logger)

	s.actor = id.UserID(uuid.New())
	s.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithActorID(context.Background(), s.actor)
	ctx = requestcontext.WithRequestID(ctx, "req-test")
	s.ctx = requestcontext.WithTime(ctx, s.now)
}

func TestWatchlistServiceSuite(t *testing.T) {
	suite.Run(t, new(WatchlistServiceSuite))
}

func (s *WatchlistServiceSuite) TestEnsureActive() {
	borrowerID := id.BorrowerID(uuid.New())
	reportA := id.ReportID(uuid.New())
	reportB := id.ReportID(uuid.New())

	s.Run("creates on first call", func() {
		created, err := s.svc.EnsureActive(s.ctx, borrowerID, reportA)
		s.Require().NoError(err)
		s.True(created)

		watchlist, err := s.svc.ActiveForBorrower(s.ctx, borrowerID)
		s.Require().NoError(err)
		s.Equal(models.StatusActive, watchlist.Status)
		s.Equal(reportA, watchlist.SourceReport)
	})

	s.Run("second report leaves the existing record untouched", func() {
		// Justification: a borrower can only ever carry one active
		// watchlist, however many reports classify them adversely.
		created, err := s.svc.EnsureActive(s.ctx, borrowerID, reportB)
		s.Require().NoError(err)
		s.False(created)

		watchlist, err := s.svc.ActiveForBorrower(s.ctx, borrowerID)
		s.Require().NoError(err)
		s.Equal(reportA, watchlist.SourceReport)
	})

	s.Run("creation is audited once", func() {
		var creations int
		for _, event := range s.auditSt.All() {
			if event.Action == audit.ActionWatchlistCreated {
				creations++
			}
		}
		s.Equal(1, creations)
	})
}

func (s *WatchlistServiceSuite) TestArchiveForBorrower() {
	borrowerID := id.BorrowerID(uuid.New())
	_, err := s.svc.EnsureActive(s.ctx, borrowerID, id.ReportID(uuid.New()))
	s.Require().NoError(err)

	s.Run("archives the active record", func() {
		archived, err := s.svc.ArchiveForBorrower(s.ctx, borrowerID, s.actor)
		s.Require().NoError(err)
		s.Equal(1, archived)

		_, err = s.svc.ActiveForBorrower(s.ctx, borrowerID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("no-op when nothing is active", func() {
		archived, err := s.svc.ArchiveForBorrower(s.ctx, borrowerID, s.actor)
		s.Require().NoError(err)
		s.Zero(archived)
	})

	s.Run("a fresh watchlist can be opened after archival", func() {
		created, err := s.svc.EnsureActive(s.ctx, borrowerID, id.ReportID(uuid.New()))
		s.Require().NoError(err)
		s.True(created)
	})
}

func (s *WatchlistServiceSuite) TestNotesAndActionItems() {
	borrowerID := id.BorrowerID(uuid.New())
	_, err := s.svc.EnsureActive(s.ctx, borrowerID, id.ReportID(uuid.New()))
	s.Require().NoError(err)
	watchlist, err := s.svc.ActiveForBorrower(s.ctx, borrowerID)
	s.Require().NoError(err)

	var note *models.MonitoringNote
	s.Run("note requires a period", func() {
		_, err := s.svc.AddNote(s.ctx, watchlist.ID, "", "body")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("creates note on active watchlist", func() {
		note, err = s.svc.AddNote(s.ctx, watchlist.ID, "2026-03", "no change in arrears")
		s.Require().NoError(err)
		s.Equal(s.actor, note.CreatedBy)
	})

	var item *models.ActionItem
	s.Run("creates action item as pending", func() {
		due := s.now.AddDate(0, 1, 0)
		item, err = s.svc.AddActionItem(s.ctx, note.ID, models.CategoryCurrentProgress, "request updated financials", &due)
		s.Require().NoError(err)
		s.Equal(models.ItemPending, item.Status)
	})

	s.Run("rejects skipped transition", func() {
		err := s.svc.TransitionActionItem(s.ctx, item.ID, models.ItemCompleted)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("walks the lifecycle in order", func() {
		s.Require().NoError(s.svc.TransitionActionItem(s.ctx, item.ID, models.ItemInProgress))
		s.Require().NoError(s.svc.TransitionActionItem(s.ctx, item.ID, models.ItemCompleted))

		got, err := s.store.GetActionItem(s.ctx, item.ID)
		s.Require().NoError(err)
		s.Equal(models.ItemCompleted, got.Status)
	})

	s.Run("rejects note on archived watchlist", func() {
		_, err := s.svc.ArchiveForBorrower(s.ctx, borrowerID, s.actor)
		s.Require().NoError(err)

		_, err = s.svc.AddNote(s.ctx, watchlist.ID, "2026-04", "late note")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *WatchlistServiceSuite) TestCarryForward() {
	borrowerID := id.BorrowerID(uuid.New())
	_, err := s.svc.EnsureActive(s.ctx, borrowerID, id.ReportID(uuid.New()))
	s.Require().NoError(err)
	watchlist, err := s.svc.ActiveForBorrower(s.ctx, borrowerID)
	s.Require().NoError(err)

	note, err := s.svc.AddNote(s.ctx, watchlist.ID, "2026-02", "initial review")
	s.Require().NoError(err)

	open, err := s.svc.AddActionItem(s.ctx, note.ID, models.CategoryNextPeriod, "collect collateral valuation", nil)
	s.Require().NoError(err)
	done, err := s.svc.AddActionItem(s.ctx, note.ID, models.CategoryNextPeriod, "call borrower", nil)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.TransitionActionItem(s.ctx, done.ID, models.ItemInProgress))
	s.Require().NoError(s.svc.TransitionActionItem(s.ctx, done.ID, models.ItemCompleted))

	newNote, carried, err := s.svc.CarryForward(s.ctx, watchlist.ID, "2026-03")
	s.Require().NoError(err)
	s.Equal(1, carried)

	items, err := s.store.ListActionItems(s.ctx, newNote.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(models.CategoryPreviousPeriod, items[0].Category)
	s.Equal(open.Description, items[0].Description)
	s.Equal(models.ItemPending, items[0].Status)

	// The clone must not disturb the original item.
	prior, err := s.store.GetActionItem(s.ctx, open.ID)
	s.Require().NoError(err)
	s.Equal(models.ItemPending, prior.Status)
	s.Equal(note.ID, prior.NoteID)
}
