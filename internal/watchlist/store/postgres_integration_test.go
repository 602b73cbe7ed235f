//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vigil/internal/watchlist/models"
	"vigil/internal/watchlist/store"
	id "vigil/pkg/domain"
	"vigil/pkg/platform/sentinel"
	"vigil/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx, "action_items", "monitoring_notes", "watchlists", "borrowers")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedBorrower() id.BorrowerID {
	borrowerID := id.BorrowerID(uuid.New())
	_, err := s.postgres.DB.ExecContext(context.Background(), `
		INSERT INTO borrowers (id, name) VALUES ($1, $2)
	`, uuid.UUID(borrowerID), "PT Integration Test")
	s.Require().NoError(err)
	return borrowerID
}

func newWatchlist(borrowerID id.BorrowerID) *models.Watchlist {
	return &models.Watchlist{
		ID:           id.WatchlistID(uuid.New()),
		BorrowerID:   borrowerID,
		Status:       models.StatusActive,
		SourceReport: id.ReportID(uuid.New()),
		CreatedAt:    time.Now(),
	}
}

// TestConcurrentCreateSingleActive verifies the partial unique index keeps
// exactly one ACTIVE watchlist per borrower under concurrent recalculations.
func (s *PostgresStoreSuite) TestConcurrentCreateSingleActive() {
	ctx := context.Background()
	borrowerID := s.seedBorrower()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := s.store.Create(ctx, newWatchlist(borrowerID))
			if err == nil {
				successCount.Add(1)
				return
			}
			if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())

	active, err := s.store.ActiveForBorrower(ctx, borrowerID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, active.Status)
}

func (s *PostgresStoreSuite) TestArchiveThenReopen() {
	ctx := context.Background()
	borrowerID := s.seedBorrower()
	resolver := id.UserID(uuid.New())

	s.Require().NoError(s.store.Create(ctx, newWatchlist(borrowerID)))

	archived, err := s.store.ArchiveActiveForBorrower(ctx, borrowerID, resolver, time.Now())
	s.Require().NoError(err)
	s.Equal(1, archived)

	_, err = s.store.ActiveForBorrower(ctx, borrowerID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// Archiving releases the partial index slot, so a fresh one can open.
	s.Require().NoError(s.store.Create(ctx, newWatchlist(borrowerID)))

	all, err := s.store.ListForBorrower(ctx, borrowerID)
	s.Require().NoError(err)
	s.Len(all, 2)

	var statuses []models.Status
	for _, watchlist := range all {
		statuses = append(statuses, watchlist.Status)
	}
	s.ElementsMatch([]models.Status{models.StatusActive, models.StatusArchived}, statuses)
}

func (s *PostgresStoreSuite) TestNoteAndActionItemRoundTrip() {
	ctx := context.Background()
	borrowerID := s.seedBorrower()

	watchlist := newWatchlist(borrowerID)
	s.Require().NoError(s.store.Create(ctx, watchlist))

	note := &models.MonitoringNote{
		ID:          id.NoteID(uuid.New()),
		WatchlistID: watchlist.ID,
		Period:      "2026-Q1",
		Body:        "covenant breach follow-up",
		CreatedBy:   id.UserID(uuid.New()),
		CreatedAt:   time.Now(),
	}
	s.Require().NoError(s.store.CreateNote(ctx, note))

	due := time.Now().AddDate(0, 1, 0)
	item := &models.ActionItem{
		ID:          id.ActionItemID(uuid.New()),
		NoteID:      note.ID,
		Category:    models.CategoryCurrentProgress,
		Description: "collect audited financials",
		Status:      models.ItemPending,
		DueDate:     &due,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	s.Require().NoError(s.store.CreateActionItem(ctx, item))

	s.Require().NoError(s.store.UpdateActionItemStatus(ctx, item.ID, models.ItemInProgress, time.Now()))

	stored, err := s.store.GetActionItem(ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(models.ItemInProgress, stored.Status)
	s.Equal("collect audited financials", stored.Description)
}
