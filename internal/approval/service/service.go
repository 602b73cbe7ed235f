// Package service runs the four-level approval chain. Levels decide in
// fixed order; a rejection parks the report until it is resubmitted, which
// resets the whole chain.
package service

import (
	"context"
	"errors"
	"log/slog"

	"vigil/internal/approval/models"
	"vigil/internal/approval/store"
	"vigil/internal/audit"
	reportmodels "vigil/internal/report/models"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/sentinel"
	"vigil/pkg/requestcontext"
)

// Reports is the report lifecycle slice the chain drives.
type Reports interface {
	GetReport(ctx context.Context, reportID id.ReportID) (*reportmodels.Report, error)
	SetStatus(ctx context.Context, reportID id.ReportID, status reportmodels.Status) error
}

// TxRunner wraps a function in a database transaction carried through ctx.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	store   store.Store
	reports Reports
	auditor audit.Recorder
	runner  TxRunner
	logger  *slog.Logger
}

func New(store store.Store, reports Reports, auditor audit.Recorder, runner TxRunner, logger *slog.Logger) *Service {
	return &Service{store: store, reports: reports, auditor: auditor, runner: runner, logger: logger}
}

// Submit moves a draft report into the approval chain, creating one PENDING
// row per level.
func (s *Service) Submit(ctx context.Context, reportID id.ReportID) error {
	return s.runner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.reports.SetStatus(ctx, reportID, reportmodels.StatusSubmitted); err != nil {
			return err
		}
		if err := s.store.InitChain(ctx, reportID); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "approval chain already exists for report")
			}
			return dErrors.Wrap(dErrors.CodeInternal, "failed to create approval chain", err)
		}
		return nil
	})
}

// Chain returns the report's approval rows in decision order.
func (s *Service) Chain(ctx context.Context, reportID id.ReportID) ([]*models.Approval, error) {
	chain, err := s.store.ListForReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "report has no approval chain")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load approval chain", err)
	}
	return chain, nil
}

// Decide records one level's decision. Earlier levels must already be
// approved; a rejection marks the report REJECTED and blocks every later
// level, and approving the last level finalizes the report.
func (s *Service) Decide(ctx context.Context, reportID id.ReportID, level models.Level, approve bool, comment string) (*models.Approval, error) {
	if level.Index() < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid approval level")
	}

	var decided *models.Approval
	err := s.runner.WithinTx(ctx, func(ctx context.Context) error {
		report, err := s.reports.GetReport(ctx, reportID)
		if err != nil {
			return err
		}
		if report.Status != reportmodels.StatusSubmitted {
			return dErrors.New(dErrors.CodeInvalidState, "report is not awaiting approval")
		}

		chain, err := s.Chain(ctx, reportID)
		if err != nil {
			return err
		}
		target := chain[level.Index()]
		if target.Status != models.StatusPending {
			return dErrors.New(dErrors.CodeInvalidState, "level has already decided")
		}
		for _, prior := range chain[:level.Index()] {
			if prior.Status != models.StatusApproved {
				return dErrors.New(dErrors.CodeInvalidState, "earlier levels have not approved yet")
			}
		}

		actor := requestcontext.ActorID(ctx)
		now := requestcontext.Now(ctx)
		target.Status = models.StatusApproved
		if !approve {
			target.Status = models.StatusRejected
		}
		target.DecidedBy = &actor
		target.DecidedAt = &now
		target.Comment = comment
		if err := s.store.Update(ctx, target); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to record decision", err)
		}

		if err := s.auditor.Record(ctx, audit.Event{
			SubjectType: "report",
			SubjectID:   reportID.String(),
			Action:      audit.ActionApprovalDecided,
			ActorID:     actor,
			RequestID:   requestcontext.RequestID(ctx),
			Metadata: map[string]any{
				"level":    string(level),
				"decision": string(target.Status),
				"comment":  comment,
			},
		}); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to audit decision", err)
		}

		switch {
		case !approve:
			if err := s.reports.SetStatus(ctx, reportID, reportmodels.StatusRejected); err != nil {
				return err
			}
		case level == models.Chain[len(models.Chain)-1]:
			if err := s.finalize(ctx, reportID, actor); err != nil {
				return err
			}
		}
		decided = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

func (s *Service) finalize(ctx context.Context, reportID id.ReportID, actor id.UserID) error {
	if err := s.reports.SetStatus(ctx, reportID, reportmodels.StatusFinal); err != nil {
		return err
	}
	if err := s.auditor.Record(ctx, audit.Event{
		SubjectType: "report",
		SubjectID:   reportID.String(),
		Action:      audit.ActionReportFinalApproved,
		ActorID:     actor,
		RequestID:   requestcontext.RequestID(ctx),
	}); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to audit final approval", err)
	}
	s.logger.InfoContext(ctx, "report final approved", "report_id", reportID)
	return nil
}

// Resubmit returns a rejected report to the chain; every level decides
// again from scratch.
func (s *Service) Resubmit(ctx context.Context, reportID id.ReportID) error {
	return s.runner.WithinTx(ctx, func(ctx context.Context) error {
		report, err := s.reports.GetReport(ctx, reportID)
		if err != nil {
			return err
		}
		if report.Status != reportmodels.StatusRejected {
			return dErrors.New(dErrors.CodeInvalidState, "only rejected reports can be resubmitted")
		}

		if err := s.reports.SetStatus(ctx, reportID, reportmodels.StatusSubmitted); err != nil {
			return err
		}
		if err := s.store.ResetChain(ctx, reportID); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to reset approval chain", err)
		}
		return s.auditor.Record(ctx, audit.Event{
			SubjectType: "report",
			SubjectID:   reportID.String(),
			Action:      audit.ActionApprovalChainReset,
			ActorID:     requestcontext.ActorID(ctx),
			RequestID:   requestcontext.RequestID(ctx),
		})
	})
}
