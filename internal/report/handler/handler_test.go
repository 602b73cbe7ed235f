package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vigil/internal/report/handler/mocks"
	"vigil/internal/report/models"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/report-mocks.go -package=mocks Service

type ReportHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
	actor   id.UserID
}

func TestReportHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReportHandlerSuite))
}

func (s *ReportHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(s.service, logger)
	s.router = chi.NewRouter()
	handler.Register(s.router)
	s.actor = id.UserID(uuid.New())
}

func (s *ReportHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

// do performs a request as the suite's authenticated actor.
func (s *ReportHandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	req = testutil.WithActor(req, s.actor, "Test Analyst")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ReportHandlerSuite) TestHandleRecalculate() {
	reportID := id.ReportID(uuid.New())
	summary := &models.Summary{
		ReportID:       reportID,
		TotalScore:     85.5,
		Classification: id.ClassificationSafe,
		Collectibility: 2,
		ComputedAt:     time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
	s.service.EXPECT().
		CalculateAndStoreSummary(gomock.Any(), reportID).
		Return(summary, nil)

	w := s.do(http.MethodPost, "/reports/"+reportID.String()+"/recalculate", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp SummaryResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(reportID.String(), resp.ReportID)
	s.InDelta(85.5, resp.TotalScore, 0.001)
	s.Equal("SAFE", resp.ComputedClassification)
	s.Equal("SAFE", resp.EffectiveClassification)
	s.Nil(resp.Override)
}

func (s *ReportHandlerSuite) TestHandleRecalculateRequiresActor() {
	reportID := id.ReportID(uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/reports/"+reportID.String()+"/recalculate", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ReportHandlerSuite) TestHandleRecalculateMalformedID() {
	w := s.do(http.MethodPost, "/reports/not-a-uuid/recalculate", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ReportHandlerSuite) TestHandleCreate() {
	borrowerID := id.BorrowerID(uuid.New())
	created := &models.Report{
		ID:         id.ReportID(uuid.New()),
		BorrowerID: borrowerID,
		Period:     "2026-Q1",
		TemplateV:  id.TemplateVersionID(uuid.New()),
		Status:     models.StatusDraft,
	}
	s.service.EXPECT().
		CreateReport(gomock.Any(), gomock.Any()).
		Return(created, nil)

	w := s.do(http.MethodPost, "/reports", CreateReportRequest{
		BorrowerID: borrowerID.String(),
		Period:     "2026-Q1",
	})

	s.Equal(http.StatusCreated, w.Code)
	var resp ReportResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(created.ID.String(), resp.ID)
	s.Equal("DRAFT", resp.Status)
}

func (s *ReportHandlerSuite) TestHandleCreateValidation() {
	s.Run("missing period", func() {
		w := s.do(http.MethodPost, "/reports", CreateReportRequest{
			BorrowerID: uuid.NewString(),
		})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("malformed borrower id", func() {
		w := s.do(http.MethodPost, "/reports", CreateReportRequest{
			BorrowerID: "nope",
			Period:     "2026-Q1",
		})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *ReportHandlerSuite) TestHandleOverride() {
	reportID := id.ReportID(uuid.New())
	override := id.ClassificationWatchlist
	summary := &models.Summary{
		ReportID:       reportID,
		TotalScore:     90,
		Classification: id.ClassificationSafe,
		Collectibility: 1,
		Override:       &override,
		OverrideReason: "sector stress",
	}
	s.service.EXPECT().
		OverrideSummary(gomock.Any(), reportID, id.ClassificationWatchlist, "sector stress").
		Return(summary, nil)

	w := s.do(http.MethodPost, "/reports/"+reportID.String()+"/override", OverrideRequest{
		Classification: "WATCHLIST",
		Reason:         "sector stress",
	})

	s.Equal(http.StatusOK, w.Code)
	var resp SummaryResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("SAFE", resp.ComputedClassification)
	s.Equal("WATCHLIST", resp.EffectiveClassification)

	s.Run("reason required", func() {
		w := s.do(http.MethodPost, "/reports/"+reportID.String()+"/override", OverrideRequest{
			Classification: "WATCHLIST",
		})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *ReportHandlerSuite) TestErrorMapping() {
	reportID := id.ReportID(uuid.New())
	s.service.EXPECT().
		GetReport(gomock.Any(), reportID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "report not found"))

	w := s.do(http.MethodGet, "/reports/"+reportID.String(), nil)

	s.Equal(http.StatusNotFound, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("not_found", resp["error"])
}
