package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"vigil/internal/watchlist/models"
	id "vigil/pkg/domain"
	"vigil/pkg/platform/sentinel"
)

// InMemory is a map-backed watchlist store for unit tests.
type InMemory struct {
	mu         sync.RWMutex
	watchlists map[id.WatchlistID]*models.Watchlist
	notes      map[id.NoteID]*models.MonitoringNote
	items      map[id.ActionItemID]*models.ActionItem
}

func NewInMemory() *InMemory {
	return &InMemory{
		watchlists: make(map[id.WatchlistID]*models.Watchlist),
		notes:      make(map[id.NoteID]*models.MonitoringNote),
		items:      make(map[id.ActionItemID]*models.ActionItem),
	}
}

func (s *InMemory) Create(_ context.Context, watchlist *models.Watchlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if watchlist.Status == models.StatusActive {
		for _, existing := range s.watchlists {
			if existing.BorrowerID == watchlist.BorrowerID && existing.Status == models.StatusActive {
				return sentinel.ErrConflict
			}
		}
	}
	cloned := *watchlist
	s.watchlists[watchlist.ID] = &cloned
	return nil
}

func (s *InMemory) Get(_ context.Context, watchlistID id.WatchlistID) (*models.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	watchlist, ok := s.watchlists[watchlistID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *watchlist
	return &cloned, nil
}

func (s *InMemory) ActiveForBorrower(_ context.Context, borrowerID id.BorrowerID) (*models.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, watchlist := range s.watchlists {
		if watchlist.BorrowerID == borrowerID && watchlist.Status == models.StatusActive {
			cloned := *watchlist
			return &cloned, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ArchiveActiveForBorrower(_ context.Context, borrowerID id.BorrowerID, resolvedBy id.UserID, resolvedAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	archived := 0
	for _, watchlist := range s.watchlists {
		if watchlist.BorrowerID == borrowerID && watchlist.Status == models.StatusActive {
			watchlist.Status = models.StatusArchived
			by := resolvedBy
			watchlist.ResolvedBy = &by
			at := resolvedAt
			watchlist.ResolvedAt = &at
			archived++
		}
	}
	return archived, nil
}

func (s *InMemory) ListForBorrower(_ context.Context, borrowerID id.BorrowerID) ([]*models.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*models.Watchlist
	for _, watchlist := range s.watchlists {
		if watchlist.BorrowerID == borrowerID {
			cloned := *watchlist
			matched = append(matched, &cloned)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *InMemory) CreateNote(_ context.Context, note *models.MonitoringNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watchlists[note.WatchlistID]; !ok {
		return sentinel.ErrNotFound
	}
	cloned := *note
	s.notes[note.ID] = &cloned
	return nil
}

func (s *InMemory) ListNotes(_ context.Context, watchlistID id.WatchlistID) ([]*models.MonitoringNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*models.MonitoringNote
	for _, note := range s.notes {
		if note.WatchlistID == watchlistID {
			cloned := *note
			matched = append(matched, &cloned)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *InMemory) CreateActionItem(_ context.Context, item *models.ActionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[item.NoteID]; !ok {
		return sentinel.ErrNotFound
	}
	cloned := *item
	s.items[item.ID] = &cloned
	return nil
}

func (s *InMemory) GetActionItem(_ context.Context, itemID id.ActionItemID) (*models.ActionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cloned := *item
	return &cloned, nil
}

func (s *InMemory) UpdateActionItemStatus(_ context.Context, itemID id.ActionItemID, status models.ItemStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return sentinel.ErrNotFound
	}
	item.Status = status
	item.UpdatedAt = updatedAt
	return nil
}

func (s *InMemory) ListActionItems(_ context.Context, noteID id.NoteID) ([]*models.ActionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*models.ActionItem
	for _, item := range s.items {
		if item.NoteID == noteID {
			cloned := *item
			matched = append(matched, &cloned)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}
