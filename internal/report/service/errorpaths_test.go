package service_test

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Catalog,Watchlists,TxRunner

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	auditmem "vigil/internal/audit/store/memory"
	"vigil/internal/report/service/mocks"
	reportstore "vigil/internal/report/store"

	"vigil/internal/audit"
	"vigil/internal/borrower"
	"vigil/internal/report/service"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// =============================================================================
// Error Path Tests
// =============================================================================
// Justification: the happy paths run against real collaborators in
// service_test.go; these tests pin how catalog, watchlist and transaction
// failures surface to callers, which in-memory collaborators cannot produce.

type ReportErrorPathSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	mockCatalog    *mocks.MockCatalog
	mockWatchlists *mocks.MockWatchlists
	mockRunner     *mocks.MockTxRunner
	reports        *reportstore.InMemory
	borrowers      *borrower.InMemory
	svc            *service.Service
	ctx            context.Context
	borrowerID     id.BorrowerID
}

func TestReportErrorPathSuite(t *testing.T) {
	suite.Run(t, new(ReportErrorPathSuite))
}

func (s *ReportErrorPathSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockCatalog = mocks.NewMockCatalog(s.ctrl)
	s.mockWatchlists = mocks.NewMockWatchlists(s.ctrl)
	s.mockRunner = mocks.NewMockTxRunner(s.ctrl)
	s.reports = reportstore.NewInMemory()
	s.borrowers = borrower.NewInMemory()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = service.New(s.reports, s.mockCatalog, s.borrowers, s.mockWatchlists,
		audit.NewService(auditmem.New()), s.mockRunner, nil, logger)

	s.ctx = context.Background()
	s.borrowerID = id.BorrowerID(uuid.New())
	s.borrowers.Put(&borrower.Detail{
		ID:             s.borrowerID,
		Name:           "PT Mock Borrower",
		Collectibility: 2,
	}, nil)
}

func (s *ReportErrorPathSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ReportErrorPathSuite) TestCreateReportResolutionFailure() {
	s.Run("resolver error propagates", func() {
		s.mockCatalog.EXPECT().
			ResolveTemplate(gomock.Any(), gomock.Any()).
			Return(id.TemplateID{}, false, dErrors.New(dErrors.CodeInternal, "template listing failed"))

		_, err := s.svc.CreateReport(s.ctx, service.CreateReportInput{
			BorrowerID: s.borrowerID,
			Period:     "2026-Q1",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("no applicable template", func() {
		s.mockCatalog.EXPECT().
			ResolveTemplate(gomock.Any(), gomock.Any()).
			Return(id.TemplateID{}, false, nil)

		_, err := s.svc.CreateReport(s.ctx, service.CreateReportInput{
			BorrowerID: s.borrowerID,
			Period:     "2026-Q1",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("unknown borrower", func() {
		_, err := s.svc.CreateReport(s.ctx, service.CreateReportInput{
			BorrowerID: id.BorrowerID(uuid.New()),
			Period:     "2026-Q1",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ReportErrorPathSuite) TestRecalculateTransactionFailure() {
	boom := dErrors.New(dErrors.CodeInternal, "begin tx failed")
	s.mockRunner.EXPECT().
		WithinTx(gomock.Any(), gomock.Any()).
		Return(boom)

	_, err := s.svc.CalculateAndStoreSummary(s.ctx, id.ReportID(uuid.New()))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ReportErrorPathSuite) TestRecalculateRunsInsideTransaction() {
	// The runner decides the transaction boundary; the recalculation body
	// must run inside the function handed to it, not before or after.
	reportID := id.ReportID(uuid.New())
	var ranInside bool
	s.mockRunner.EXPECT().
		WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			ranInside = true
			err := fn(ctx)
			// The report does not exist, so the body must fail.
			s.Error(err)
			return err
		})

	_, err := s.svc.CalculateAndStoreSummary(s.ctx, reportID)
	s.Require().Error(err)
	s.True(ranInside)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
