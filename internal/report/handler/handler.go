package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vigil/internal/report/models"
	"vigil/internal/report/service"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/httputil"
	"vigil/pkg/requestcontext"
)

// Service defines the report operations the HTTP surface exposes.
type Service interface {
	CreateReport(ctx context.Context, input service.CreateReportInput) (*models.Report, error)
	GetReport(ctx context.Context, reportID id.ReportID) (*models.Report, error)
	SaveAnswer(ctx context.Context, reportID id.ReportID, questionVID id.QuestionVersionID, optionID id.QuestionOptionID) (*models.Answer, error)
	CalculateAndStoreSummary(ctx context.Context, reportID id.ReportID) (*models.Summary, error)
	OverrideSummary(ctx context.Context, reportID id.ReportID, override id.Classification, reason string) (*models.Summary, error)
	GetResults(ctx context.Context, reportID id.ReportID) ([]*models.AspectResult, *models.Summary, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts report endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/reports", h.HandleCreate)
	r.Get("/reports/{reportID}", h.HandleGet)
	r.Put("/reports/{reportID}/answers", h.HandleSaveAnswer)
	r.Post("/reports/{reportID}/recalculate", h.HandleRecalculate)
	r.Get("/reports/{reportID}/results", h.HandleResults)
	r.Post("/reports/{reportID}/override", h.HandleOverride)
}

func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	actor := requestcontext.ActorID(r.Context())
	if actor == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return actor, true
}

func reportIDParam(w http.ResponseWriter, r *http.Request) (id.ReportID, bool) {
	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ReportID{}, false
	}
	return reportID, true
}

// HandleCreate handles POST /reports.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireActor(w, r); !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateReportRequest](w, r)
	if !ok {
		return
	}

	report, err := h.service.CreateReport(ctx, req.Input())
	if err != nil {
		h.logger.ErrorContext(ctx, "report creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"borrower_id", req.BorrowerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromReport(report))
}

// HandleGet handles GET /reports/{reportID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}
	report, err := h.service.GetReport(r.Context(), reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleSaveAnswer handles PUT /reports/{reportID}/answers.
func (h *Handler) HandleSaveAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireActor(w, r); !ok {
		return
	}
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SaveAnswerRequest](w, r)
	if !ok {
		return
	}

	answer, err := h.service.SaveAnswer(ctx, reportID, req.ParsedQuestionVersionID(), req.ParsedOptionID())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAnswer(answer))
}

// HandleRecalculate handles POST /reports/{reportID}/recalculate.
func (h *Handler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}
	start := time.Now()

	summary, err := h.service.CalculateAndStoreSummary(ctx, reportID)
	if err != nil {
		h.logger.ErrorContext(ctx, "recalculation failed",
			"request_id", requestcontext.RequestID(ctx),
			"report_id", reportID,
			"actor_id", actor,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "recalculation served",
		"request_id", requestcontext.RequestID(ctx),
		"report_id", reportID,
		"classification", summary.FinalClassification(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSummary(summary))
}

// HandleResults handles GET /reports/{reportID}/results.
func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}
	aspects, summary, err := h.service.GetResults(r.Context(), reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromResults(aspects, summary))
}

// HandleOverride handles POST /reports/{reportID}/override.
func (h *Handler) HandleOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireActor(w, r); !ok {
		return
	}
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[OverrideRequest](w, r)
	if !ok {
		return
	}

	summary, err := h.service.OverrideSummary(ctx, reportID, req.ParsedClassification(), req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSummary(summary))
}
