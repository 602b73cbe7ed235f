package handler

import (
	"time"

	"vigil/internal/watchlist/models"
)

// WatchlistResponse is the HTTP representation of a watchlist.
type WatchlistResponse struct {
	ID             string     `json:"id"`
	BorrowerID     string     `json:"borrower_id"`
	Status         string     `json:"status"`
	SourceReportID string     `json:"source_report_id"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

func FromWatchlist(watchlist *models.Watchlist) *WatchlistResponse {
	return &WatchlistResponse{
		ID:             watchlist.ID.String(),
		BorrowerID:     watchlist.BorrowerID.String(),
		Status:         string(watchlist.Status),
		SourceReportID: watchlist.SourceReport.String(),
		CreatedAt:      watchlist.CreatedAt,
		ResolvedAt:     watchlist.ResolvedAt,
	}
}

// NoteResponse is the HTTP representation of a monitoring note.
type NoteResponse struct {
	ID          string    `json:"id"`
	WatchlistID string    `json:"watchlist_id"`
	Period      string    `json:"period"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromNote(note *models.MonitoringNote) *NoteResponse {
	return &NoteResponse{
		ID:          note.ID.String(),
		WatchlistID: note.WatchlistID.String(),
		Period:      note.Period,
		Body:        note.Body,
		CreatedAt:   note.CreatedAt,
	}
}

// CarryForwardResponse reports the new note and how many unresolved items
// moved into it.
type CarryForwardResponse struct {
	Note    *NoteResponse `json:"note"`
	Carried int           `json:"carried"`
}

func FromCarryForward(note *models.MonitoringNote, carried int) *CarryForwardResponse {
	return &CarryForwardResponse{Note: FromNote(note), Carried: carried}
}

// ItemResponse is the HTTP representation of an action item.
type ItemResponse struct {
	ID          string     `json:"id"`
	NoteID      string     `json:"note_id"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func FromItem(item *models.ActionItem) *ItemResponse {
	return &ItemResponse{
		ID:          item.ID.String(),
		NoteID:      item.NoteID.String(),
		Category:    string(item.Category),
		Description: item.Description,
		Status:      string(item.Status),
		DueDate:     item.DueDate,
		CreatedAt:   item.CreatedAt,
	}
}
