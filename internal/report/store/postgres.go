package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vigil/internal/report/models"
	id "vigil/pkg/domain"
	"vigil/pkg/platform/sentinel"
	"vigil/pkg/platform/tx"
)

// Postgres persists reports in four tables: reports, answers (unique per
// report and question version), report_aspects (unique per report and aspect
// version) and report_summaries (one row per report). The result tables are
// written with ON CONFLICT upserts so recalculation never accumulates rows.
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

func (s *Postgres) CreateReport(ctx context.Context, report *models.Report) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO reports (id, borrower_id, period, template_version_id, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(report.ID), uuid.UUID(report.BorrowerID), report.Period,
		uuid.UUID(report.TemplateV), string(report.Status), uuid.UUID(report.CreatedBy),
		report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *Postgres) GetReport(ctx context.Context, reportID id.ReportID) (*models.Report, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, borrower_id, period, template_version_id, status, created_by, created_at, updated_at
		FROM reports WHERE id = $1`,
		uuid.UUID(reportID),
	)

	var report models.Report
	var reportUUID, borrowerUUID, templateUUID, creatorUUID uuid.UUID
	var status string
	err := row.Scan(&reportUUID, &borrowerUUID, &report.Period, &templateUUID,
		&status, &creatorUUID, &report.CreatedAt, &report.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select report: %w", err)
	}
	report.ID = id.ReportID(reportUUID)
	report.BorrowerID = id.BorrowerID(borrowerUUID)
	report.TemplateV = id.TemplateVersionID(templateUUID)
	report.CreatedBy = id.UserID(creatorUUID)
	report.Status = models.Status(status)
	return &report, nil
}

func (s *Postgres) UpdateReportStatus(ctx context.Context, reportID id.ReportID, status models.Status, updatedAt time.Time) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE reports SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(reportID), string(status), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
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

func (s *Postgres) ListReportsForBorrower(ctx context.Context, borrowerID id.BorrowerID) ([]*models.Report, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, borrower_id, period, template_version_id, status, created_by, created_at, updated_at
		FROM reports WHERE borrower_id = $1 ORDER BY created_at`,
		uuid.UUID(borrowerID),
	)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer rows.Close()

	var out []*models.Report
	for rows.Next() {
		var report models.Report
		var reportUUID, borrowerUUID, templateUUID, creatorUUID uuid.UUID
		var status string
		if err := rows.Scan(&reportUUID, &borrowerUUID, &report.Period, &templateUUID,
			&status, &creatorUUID, &report.CreatedAt, &report.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		report.ID = id.ReportID(reportUUID)
		report.BorrowerID = id.BorrowerID(borrowerUUID)
		report.TemplateV = id.TemplateVersionID(templateUUID)
		report.CreatedBy = id.UserID(creatorUUID)
		report.Status = models.Status(status)
		out = append(out, &report)
	}
	return out, rows.Err()
}

func (s *Postgres) UpsertAnswer(ctx context.Context, answer *models.Answer) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO answers (id, report_id, question_version_id, option_id, answered_by, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (report_id, question_version_id) DO UPDATE SET
			option_id = EXCLUDED.option_id,
			answered_by = EXCLUDED.answered_by,
			answered_at = EXCLUDED.answered_at`,
		uuid.UUID(answer.ID), uuid.UUID(answer.ReportID), uuid.UUID(answer.QuestionV),
		uuid.UUID(answer.OptionID), uuid.UUID(answer.AnsweredBy), answer.AnsweredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	return nil
}

func (s *Postgres) ListAnswers(ctx context.Context, reportID id.ReportID) ([]*models.Answer, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, report_id, question_version_id, option_id, answered_by, answered_at
		FROM answers WHERE report_id = $1 ORDER BY question_version_id`,
		uuid.UUID(reportID),
	)
	if err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}
	defer rows.Close()

	var out []*models.Answer
	for rows.Next() {
		var answer models.Answer
		var answerUUID, rUUID, questionUUID, optionUUID, actorUUID uuid.UUID
		if err := rows.Scan(&answerUUID, &rUUID, &questionUUID, &optionUUID,
			&actorUUID, &answer.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answer.ID = id.AnswerID(answerUUID)
		answer.ReportID = id.ReportID(rUUID)
		answer.QuestionV = id.QuestionVersionID(questionUUID)
		answer.OptionID = id.QuestionOptionID(optionUUID)
		answer.AnsweredBy = id.UserID(actorUUID)
		out = append(out, &answer)
	}
	return out, rows.Err()
}

func (s *Postgres) UpsertAspectResult(ctx context.Context, result *models.AspectResult) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO report_aspects (report_id, aspect_version_id, score, classification, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (report_id, aspect_version_id) DO UPDATE SET
			score = EXCLUDED.score,
			classification = EXCLUDED.classification,
			computed_at = EXCLUDED.computed_at`,
		uuid.UUID(result.ReportID), uuid.UUID(result.AspectV),
		result.Score, string(result.Classification), result.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert report aspect: %w", err)
	}
	return nil
}

func (s *Postgres) ListAspectResults(ctx context.Context, reportID id.ReportID) ([]*models.AspectResult, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT report_id, aspect_version_id, score, classification, computed_at
		FROM report_aspects WHERE report_id = $1 ORDER BY aspect_version_id`,
		uuid.UUID(reportID),
	)
	if err != nil {
		return nil, fmt.Errorf("select report aspects: %w", err)
	}
	defer rows.Close()

	var out []*models.AspectResult
	for rows.Next() {
		var result models.AspectResult
		var rUUID, aspectUUID uuid.UUID
		var classification string
		if err := rows.Scan(&rUUID, &aspectUUID, &result.Score, &classification, &result.ComputedAt); err != nil {
			return nil, fmt.Errorf("scan report aspect: %w", err)
		}
		result.ReportID = id.ReportID(rUUID)
		result.AspectV = id.AspectVersionID(aspectUUID)
		result.Classification = id.Classification(classification)
		out = append(out, &result)
	}
	return out, rows.Err()
}

func (s *Postgres) UpsertSummary(ctx context.Context, summary *models.Summary) error {
	var override sql.NullString
	if summary.Override != nil {
		override = sql.NullString{String: string(*summary.Override), Valid: true}
	}
	var overriddenBy uuid.NullUUID
	if summary.OverriddenBy != nil {
		overriddenBy = uuid.NullUUID{UUID: uuid.UUID(*summary.OverriddenBy), Valid: true}
	}

	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO report_summaries (report_id, total_score, classification, collectibility,
			override_classification, override_reason, overridden_by, notes, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (report_id) DO UPDATE SET
			total_score = EXCLUDED.total_score,
			classification = EXCLUDED.classification,
			collectibility = EXCLUDED.collectibility,
			override_classification = EXCLUDED.override_classification,
			override_reason = EXCLUDED.override_reason,
			overridden_by = EXCLUDED.overridden_by,
			notes = EXCLUDED.notes,
			computed_at = EXCLUDED.computed_at`,
		uuid.UUID(summary.ReportID), summary.TotalScore, string(summary.Classification),
		int(summary.Collectibility), override, summary.OverrideReason, overriddenBy,
		summary.Notes, summary.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert report summary: %w", err)
	}
	return nil
}

func (s *Postgres) GetSummary(ctx context.Context, reportID id.ReportID) (*models.Summary, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT report_id, total_score, classification, collectibility,
			override_classification, override_reason, overridden_by, notes, computed_at
		FROM report_summaries WHERE report_id = $1`,
		uuid.UUID(reportID),
	)

	var summary models.Summary
	var rUUID uuid.UUID
	var classification string
	var collectibility int
	var override sql.NullString
	var overriddenBy uuid.NullUUID
	err := row.Scan(&rUUID, &summary.TotalScore, &classification, &collectibility,
		&override, &summary.OverrideReason, &overriddenBy, &summary.Notes, &summary.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select report summary: %w", err)
	}
	summary.ReportID = id.ReportID(rUUID)
	summary.Classification = id.Classification(classification)
	summary.Collectibility = id.Collectibility(collectibility)
	if override.Valid {
		cls := id.Classification(override.String)
		summary.Override = &cls
	}
	if overriddenBy.Valid {
		actor := id.UserID(overriddenBy.UUID)
		summary.OverriddenBy = &actor
	}
	return &summary, nil
}
