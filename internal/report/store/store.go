package store

import (
	"context"
	"time"

	"vigil/internal/report/models"
	id "vigil/pkg/domain"
)

// Store persists reports, answers and computed results.
//
// Implementations must respect an ambient transaction carried in ctx so a
// recalculation's aspect rows, summary row and audit entry commit together.
// UpsertAspectResult is keyed on (report, aspect version) and UpsertSummary
// on report id, which is what makes recalculation idempotent.
type Store interface {
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, reportID id.ReportID) (*models.Report, error)
	UpdateReportStatus(ctx context.Context, reportID id.ReportID, status models.Status, updatedAt time.Time) error
	ListReportsForBorrower(ctx context.Context, borrowerID id.BorrowerID) ([]*models.Report, error)

	UpsertAnswer(ctx context.Context, answer *models.Answer) error
	ListAnswers(ctx context.Context, reportID id.ReportID) ([]*models.Answer, error)

	UpsertAspectResult(ctx context.Context, result *models.AspectResult) error
	ListAspectResults(ctx context.Context, reportID id.ReportID) ([]*models.AspectResult, error)

	UpsertSummary(ctx context.Context, summary *models.Summary) error
	GetSummary(ctx context.Context, reportID id.ReportID) (*models.Summary, error)
}
