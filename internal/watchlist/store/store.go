// Package store persists watchlists, monitoring notes and action items.
package store

import (
	"context"
	"time"

	"vigil/internal/watchlist/models"
	id "vigil/pkg/domain"
)

// Store is the watchlist persistence contract. Create must fail with
// sentinel.ErrConflict when the borrower already has an ACTIVE record, so
// the singleton invariant holds even under concurrent recalculations.
type Store interface {
	Create(ctx context.Context, watchlist *models.Watchlist) error
	Get(ctx context.Context, watchlistID id.WatchlistID) (*models.Watchlist, error)
	ActiveForBorrower(ctx context.Context, borrowerID id.BorrowerID) (*models.Watchlist, error)
	ArchiveActiveForBorrower(ctx context.Context, borrowerID id.BorrowerID, resolvedBy id.UserID, resolvedAt time.Time) (int, error)
	ListForBorrower(ctx context.Context, borrowerID id.BorrowerID) ([]*models.Watchlist, error)

	CreateNote(ctx context.Context, note *models.MonitoringNote) error
	ListNotes(ctx context.Context, watchlistID id.WatchlistID) ([]*models.MonitoringNote, error)

	CreateActionItem(ctx context.Context, item *models.ActionItem) error
	GetActionItem(ctx context.Context, itemID id.ActionItemID) (*models.ActionItem, error)
	UpdateActionItemStatus(ctx context.Context, itemID id.ActionItemID, status models.ItemStatus, updatedAt time.Time) error
	ListActionItems(ctx context.Context, noteID id.NoteID) ([]*models.ActionItem, error)
}
