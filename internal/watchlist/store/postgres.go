package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vigil/internal/watchlist/models"
	id "vigil/pkg/domain"
	"vigil/pkg/platform/sentinel"
	txcontext "vigil/pkg/platform/tx"
)

// Postgres persists watchlists. The singleton invariant is backed by a
// partial unique index on (borrower_id) WHERE status = 'ACTIVE', so a racing
// second insert surfaces as ErrConflict instead of a duplicate.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, watchlist *models.Watchlist) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO watchlists (id, borrower_id, status, source_report_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(watchlist.ID), uuid.UUID(watchlist.BorrowerID), string(watchlist.Status),
		uuid.UUID(watchlist.SourceReport), watchlist.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create watchlist: %w", err)
	}
	return nil
}

func scanWatchlist(row interface{ Scan(...any) error }) (*models.Watchlist, error) {
	var watchlist models.Watchlist
	var rawID, rawBorrowerID, rawReportID uuid.UUID
	var status string
	var resolvedBy uuid.NullUUID
	var resolvedAt sql.NullTime
	err := row.Scan(&rawID, &rawBorrowerID, &status, &rawReportID, &watchlist.CreatedAt, &resolvedBy, &resolvedAt)
	if err != nil {
		return nil, err
	}
	watchlist.ID = id.WatchlistID(rawID)
	watchlist.BorrowerID = id.BorrowerID(rawBorrowerID)
	watchlist.SourceReport = id.ReportID(rawReportID)
	watchlist.Status = models.Status(status)
	if resolvedBy.Valid {
		by := id.UserID(resolvedBy.UUID)
		watchlist.ResolvedBy = &by
	}
	if resolvedAt.Valid {
		at := resolvedAt.Time
		watchlist.ResolvedAt = &at
	}
	return &watchlist, nil
}

const watchlistColumns = `id, borrower_id, status, source_report_id, created_at, resolved_by, resolved_at`

func (s *Postgres) Get(ctx context.Context, watchlistID id.WatchlistID) (*models.Watchlist, error) {
	watchlist, err := scanWatchlist(s.execer(ctx).QueryRowContext(ctx, `
		SELECT `+watchlistColumns+` FROM watchlists WHERE id = $1
	`, uuid.UUID(watchlistID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get watchlist: %w", err)
	}
	return watchlist, nil
}

func (s *Postgres) ActiveForBorrower(ctx context.Context, borrowerID id.BorrowerID) (*models.Watchlist, error) {
	watchlist, err := scanWatchlist(s.execer(ctx).QueryRowContext(ctx, `
		SELECT `+watchlistColumns+` FROM watchlists
		WHERE borrower_id = $1 AND status = 'ACTIVE'
	`, uuid.UUID(borrowerID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("active watchlist: %w", err)
	}
	return watchlist, nil
}

func (s *Postgres) ArchiveActiveForBorrower(ctx context.Context, borrowerID id.BorrowerID, resolvedBy id.UserID, resolvedAt time.Time) (int, error) {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE watchlists
		SET status = 'ARCHIVED', resolved_by = $2, resolved_at = $3
		WHERE borrower_id = $1 AND status = 'ACTIVE'
	`, uuid.UUID(borrowerID), uuid.UUID(resolvedBy), resolvedAt)
	if err != nil {
		return 0, fmt.Errorf("archive watchlists: %w", err)
	}
	archived, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("archive watchlists rows affected: %w", err)
	}
	return int(archived), nil
}

func (s *Postgres) ListForBorrower(ctx context.Context, borrowerID id.BorrowerID) ([]*models.Watchlist, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+watchlistColumns+` FROM watchlists
		WHERE borrower_id = $1 ORDER BY created_at ASC
	`, uuid.UUID(borrowerID))
	if err != nil {
		return nil, fmt.Errorf("list watchlists: %w", err)
	}
	defer rows.Close()

	var watchlists []*models.Watchlist
	for rows.Next() {
		watchlist, err := scanWatchlist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		watchlists = append(watchlists, watchlist)
	}
	return watchlists, rows.Err()
}

func (s *Postgres) CreateNote(ctx context.Context, note *models.MonitoringNote) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO monitoring_notes (id, watchlist_id, period, body, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(note.ID), uuid.UUID(note.WatchlistID), note.Period, note.Body,
		uuid.UUID(note.CreatedBy), note.CreatedAt)
	if err != nil {
		return fmt.Errorf("create monitoring note: %w", err)
	}
	return nil
}

func (s *Postgres) ListNotes(ctx context.Context, watchlistID id.WatchlistID) ([]*models.MonitoringNote, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, watchlist_id, period, body, created_by, created_at
		FROM monitoring_notes WHERE watchlist_id = $1
		ORDER BY created_at ASC
	`, uuid.UUID(watchlistID))
	if err != nil {
		return nil, fmt.Errorf("list monitoring notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.MonitoringNote
	for rows.Next() {
		var note models.MonitoringNote
		var rawID, rawWatchlistID, rawCreatedBy uuid.UUID
		if err := rows.Scan(&rawID, &rawWatchlistID, &note.Period, &note.Body, &rawCreatedBy, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan monitoring note: %w", err)
		}
		note.ID = id.NoteID(rawID)
		note.WatchlistID = id.WatchlistID(rawWatchlistID)
		note.CreatedBy = id.UserID(rawCreatedBy)
		notes = append(notes, &note)
	}
	return notes, rows.Err()
}

func (s *Postgres) CreateActionItem(ctx context.Context, item *models.ActionItem) error {
	var due any
	if item.DueDate != nil {
		due = *item.DueDate
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO action_items (id, note_id, category, description, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(item.ID), uuid.UUID(item.NoteID), string(item.Category), item.Description,
		string(item.Status), due, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create action item: %w", err)
	}
	return nil
}

func (s *Postgres) GetActionItem(ctx context.Context, itemID id.ActionItemID) (*models.ActionItem, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, note_id, category, description, status, due_date, created_at, updated_at
		FROM action_items WHERE id = $1
	`, uuid.UUID(itemID))

	item, err := scanActionItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get action item: %w", err)
	}
	return item, nil
}

func scanActionItem(row interface{ Scan(...any) error }) (*models.ActionItem, error) {
	var item models.ActionItem
	var rawID, rawNoteID uuid.UUID
	var category, status string
	var due sql.NullTime
	err := row.Scan(&rawID, &rawNoteID, &category, &item.Description, &status, &due, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.ID = id.ActionItemID(rawID)
	item.NoteID = id.NoteID(rawNoteID)
	item.Category = models.ItemCategory(category)
	item.Status = models.ItemStatus(status)
	if due.Valid {
		at := due.Time
		item.DueDate = &at
	}
	return &item, nil
}

func (s *Postgres) UpdateActionItemStatus(ctx context.Context, itemID id.ActionItemID, status models.ItemStatus, updatedAt time.Time) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE action_items SET status = $2, updated_at = $3 WHERE id = $1
	`, uuid.UUID(itemID), string(status), updatedAt)
	if err != nil {
		return fmt.Errorf("update action item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update action item rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListActionItems(ctx context.Context, noteID id.NoteID) ([]*models.ActionItem, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, note_id, category, description, status, due_date, created_at, updated_at
		FROM action_items WHERE note_id = $1
		ORDER BY created_at ASC
	`, uuid.UUID(noteID))
	if err != nil {
		return nil, fmt.Errorf("list action items: %w", err)
	}
	defer rows.Close()

	var items []*models.ActionItem
	for rows.Next() {
		item, err := scanActionItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan action item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
