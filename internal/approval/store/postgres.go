package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vigil/internal/approval/models"
	id "vigil/pkg/domain"
	"vigil/pkg/platform/sentinel"
	"vigil/pkg/platform/tx"
)

const uniqueViolation = "23505"

// Postgres keeps the chain in one table keyed (report_id, level).
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
	if txn, ok := tx.From(ctx); ok {
		return txn
	}
	return s.db
}

func (s *Postgres) InitChain(ctx context.Context, reportID id.ReportID) error {
	for _, level := range models.Chain {
		_, err := s.execer(ctx).ExecContext(ctx, `
			INSERT INTO approvals (report_id, level, status)
			VALUES ($1, $2, $3)`,
			uuid.UUID(reportID), string(level), string(models.StatusPending),
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert approval row: %w", err)
		}
	}
	return nil
}

func (s *Postgres) ListForReport(ctx context.Context, reportID id.ReportID) ([]*models.Approval, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT report_id, level, status, decided_by, decided_at, comment
		FROM approvals WHERE report_id = $1`,
		uuid.UUID(reportID),
	)
	if err != nil {
		return nil, fmt.Errorf("select approvals: %w", err)
	}
	defer rows.Close()

	var out []*models.Approval
	for rows.Next() {
		var approval models.Approval
		var reportUUID uuid.UUID
		var level, status string
		var decidedBy uuid.NullUUID
		var decidedAt sql.NullTime
		if err := rows.Scan(&reportUUID, &level, &status, &decidedBy, &decidedAt, &approval.Comment); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		approval.ReportID = id.ReportID(reportUUID)
		approval.Level = models.Level(level)
		approval.Status = models.Status(status)
		if decidedBy.Valid {
			actor := id.UserID(decidedBy.UUID)
			approval.DecidedBy = &actor
		}
		if decidedAt.Valid {
			at := decidedAt.Time
			approval.DecidedAt = &at
		}
		out = append(out, &approval)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, sentinel.ErrNotFound
	}
	// Chain order is domain knowledge, not column order.
	sort.Slice(out, func(i, j int) bool { return out[i].Level.Index() < out[j].Level.Index() })
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, approval *models.Approval) error {
	var decidedBy uuid.NullUUID
	if approval.DecidedBy != nil {
		decidedBy = uuid.NullUUID{UUID: uuid.UUID(*approval.DecidedBy), Valid: true}
	}
	var decidedAt sql.NullTime
	if approval.DecidedAt != nil {
		decidedAt = sql.NullTime{Time: *approval.DecidedAt, Valid: true}
	}

	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE approvals
		SET status = $3, decided_by = $4, decided_at = $5, comment = $6
		WHERE report_id = $1 AND level = $2`,
		uuid.UUID(approval.ReportID), string(approval.Level),
		string(approval.Status), decidedBy, decidedAt, approval.Comment,
	)
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ResetChain(ctx context.Context, reportID id.ReportID) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE approvals
		SET status = $2, decided_by = NULL, decided_at = NULL, comment = ''
		WHERE report_id = $1`,
		uuid.UUID(reportID), string(models.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("reset approvals: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
