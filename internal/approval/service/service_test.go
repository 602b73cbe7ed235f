package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	auditmem "vigil/internal/audit/store/memory"
	"vigil/internal/report/models"

	approvalmodels "vigil/internal/approval/models"
	"vigil/internal/approval/service"
	"vigil/internal/approval/store"
	"vigil/internal/audit"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/requestcontext"
)

type passthroughRunner struct{}

func (passthroughRunner) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// stubReports drives status transitions without the full report service.
type stubReports struct {
	reports map[id.ReportID]*models.Report
}

func (s *stubReports) GetReport(_ context.Context, reportID id.ReportID) (*models.Report, error) {
	report, ok := s.reports[reportID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
	}
	return report, nil
}

func (s *stubReports) SetStatus(_ context.Context, reportID id.ReportID, status models.Status) error {
	report, ok := s.reports[reportID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "report not found")
	}
	report.Status = status
	return nil
}

type ApprovalServiceSuite struct {
	suite.Suite
	svc      *service.Service
	reports  *stubReports
	auditSt  *auditmem.Store
	ctx      context.Context
	actor    id.UserID
	reportID id.ReportID
}

func TestApprovalServiceSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceSuite))
}

func (s *ApprovalServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.auditSt = auditmem.New()
	s.reportID = id.ReportID(uuid.New())
	s.reports = &stubReports{reports: map[id.ReportID]*models.Report{
		s.reportID: {ID: s.reportID, Status: models.StatusDraft},
	}}
	s.svc = service.New(store.NewInMemory(), s.reports, audit.NewService(s.auditSt), passthroughRunner{}, logger)

	s.actor = id.UserID(uuid.New())
	ctx := requestcontext.WithActorID(context.Background(), s.actor)
	s.ctx = requestcontext.WithTime(ctx, time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC))
}

func (s *ApprovalServiceSuite) TestSubmit() {
	s.Require().NoError(s.svc.Submit(s.ctx, s.reportID))

	chain, err := s.svc.Chain(s.ctx, s.reportID)
	s.Require().NoError(err)
	s.Require().Len(chain, 4)
	s.Equal(approvalmodels.LevelRM, chain[0].Level)
	s.Equal(approvalmodels.LevelKadivERO, chain[3].Level)
	for _, approval := range chain {
		s.Equal(approvalmodels.StatusPending, approval.Status)
	}

	s.Run("double submit conflicts", func() {
		err := s.svc.Submit(s.ctx, s.reportID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ApprovalServiceSuite) TestDecideOrdering() {
	s.Require().NoError(s.svc.Submit(s.ctx, s.reportID))

	s.Run("later level cannot jump the queue", func() {
		_, err := s.svc.Decide(s.ctx, s.reportID, approvalmodels.LevelKadeptBisnis, true, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("levels approve in order", func() {
		for _, level := range approvalmodels.Chain[:3] {
			approval, err := s.svc.Decide(s.ctx, s.reportID, level, true, "ok")
			s.Require().NoError(err)
			s.Equal(approvalmodels.StatusApproved, approval.Status)
			s.Require().NotNil(approval.DecidedBy)
			s.Equal(s.actor, *approval.DecidedBy)
		}
	})

	s.Run("a level decides once", func() {
		_, err := s.svc.Decide(s.ctx, s.reportID, approvalmodels.LevelRM, true, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("last approval finalizes the report", func() {
		_, err := s.svc.Decide(s.ctx, s.reportID, approvalmodels.LevelKadivERO, true, "")
		s.Require().NoError(err)
		s.Equal(models.StatusFinal, s.reports.reports[s.reportID].Status)

		var finals int
		for _, event := range s.auditSt.All() {
			if event.Action == audit.ActionReportFinalApproved {
				finals++
			}
		}
		s.Equal(1, finals)
	})

	s.Run("final report accepts no more decisions", func() {
		_, err := s.svc.Decide(s.ctx, s.reportID, approvalmodels.LevelKadivERO, true, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *ApprovalServiceSuite) TestRejectionAndResubmission() {
	s.Require().NoError(s.svc.Submit(s.ctx, s.reportID))
	_, err := s.svc.Decide(s.ctx, s.reportID, approvalmodels.LevelRM, true, "")
	s.Require().NoError(err)

	s.Run("rejection parks the report", func() {
		approval, err := s.svc.Decide(s.ctx, s.reportID, approvalmodels.LevelRiskAnalyst, false, "collateral docs missing")
		s.Require().NoError(err)
		s.Equal(approvalmodels.StatusRejected, approval.Status)
		s.Equal(models.StatusRejected, s.reports.reports[s.reportID].Status)
	})

	s.Run("no decisions while rejected", func() {
		_, err := s.svc.Decide(s.ctx, s.reportID, approvalmodels.LevelKadeptBisnis, true, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("resubmission resets every level", func() {
		// Justification: resubmitted reports are re-reviewed from scratch;
		// the RM's earlier approval does not carry over.
		s.Require().NoError(s.svc.Resubmit(s.ctx, s.reportID))
		s.Equal(models.StatusSubmitted, s.reports.reports[s.reportID].Status)

		chain, err := s.svc.Chain(s.ctx, s.reportID)
		s.Require().NoError(err)
		for _, approval := range chain {
			s.Equal(approvalmodels.StatusPending, approval.Status)
			s.Nil(approval.DecidedBy)
		}
	})

	s.Run("only rejected reports resubmit", func() {
		err := s.svc.Resubmit(s.ctx, s.reportID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}
