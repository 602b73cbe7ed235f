package store

import (
	"context"

	"vigil/internal/approval/models"
	id "vigil/pkg/domain"
)

// Store persists approval chain rows. Implementations must respect an
// ambient transaction in ctx.
type Store interface {
	// InitChain creates one PENDING row per chain level. Returns
	// sentinel.ErrConflict when a chain already exists for the report.
	InitChain(ctx context.Context, reportID id.ReportID) error
	ListForReport(ctx context.Context, reportID id.ReportID) ([]*models.Approval, error)
	// Update replaces the row identified by (report, level).
	Update(ctx context.Context, approval *models.Approval) error
	// ResetChain returns every row for the report to PENDING, clearing
	// decisions.
	ResetChain(ctx context.Context, reportID id.ReportID) error
}
