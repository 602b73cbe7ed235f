package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vigil/internal/borrower"
	"vigil/internal/catalog/models"
	"vigil/internal/catalog/service"
	"vigil/internal/visibility"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/httputil"
	"vigil/pkg/requestcontext"
)

// Service defines the catalog authoring and resolution operations.
type Service interface {
	CreateAspect(ctx context.Context, input service.AspectInput) (*models.AspectVersion, error)
	ReviseAspect(ctx context.Context, aspectID id.AspectID, input service.AspectInput) (*models.AspectVersion, error)
	GetAspectVersion(ctx context.Context, versionID id.AspectVersionID) (*models.AspectVersion, error)
	CreateTemplate(ctx context.Context, input service.TemplateInput) (*models.TemplateVersion, error)
	ReviseTemplate(ctx context.Context, templateID id.TemplateID, input service.TemplateInput) (*models.TemplateVersion, error)
	LatestTemplateVersion(ctx context.Context, templateID id.TemplateID) (*models.TemplateVersion, error)
	ResolveTemplate(ctx context.Context, evalCtx visibility.Context) (id.TemplateID, bool, error)
}

type Handler struct {
	service   Service
	borrowers borrower.Store
	logger    *slog.Logger
}

func New(service Service, borrowers borrower.Store, logger *slog.Logger) *Handler {
	return &Handler{service: service, borrowers: borrowers, logger: logger}
}

// Register mounts catalog endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/catalog/aspects", h.HandleCreateAspect)
	r.Post("/catalog/aspects/{aspectID}/revisions", h.HandleReviseAspect)
	r.Get("/catalog/aspect-versions/{versionID}", h.HandleGetAspectVersion)
	r.Post("/catalog/templates", h.HandleCreateTemplate)
	r.Post("/catalog/templates/{templateID}/revisions", h.HandleReviseTemplate)
	r.Get("/catalog/templates/{templateID}/latest", h.HandleLatestTemplateVersion)
	r.Get("/borrowers/{borrowerID}/template", h.HandleResolveTemplate)
}

func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) bool {
	if requestcontext.ActorID(r.Context()) == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return false
	}
	return true
}

// HandleCreateAspect handles POST /catalog/aspects.
func (h *Handler) HandleCreateAspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireActor(w, r) {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AspectRequest](w, r)
	if !ok {
		return
	}

	version, err := h.service.CreateAspect(ctx, req.Input())
	if err != nil {
		h.logger.ErrorContext(ctx, "aspect creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"code", req.Code,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromAspectVersion(version))
}

// HandleReviseAspect handles POST /catalog/aspects/{aspectID}/revisions.
func (h *Handler) HandleReviseAspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireActor(w, r) {
		return
	}
	aspectID, err := id.ParseAspectID(chi.URLParam(r, "aspectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AspectRequest](w, r)
	if !ok {
		return
	}

	version, err := h.service.ReviseAspect(ctx, aspectID, req.Input())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromAspectVersion(version))
}

// HandleGetAspectVersion handles GET /catalog/aspect-versions/{versionID}.
func (h *Handler) HandleGetAspectVersion(w http.ResponseWriter, r *http.Request) {
	versionID, err := id.ParseAspectVersionID(chi.URLParam(r, "versionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := h.service.GetAspectVersion(r.Context(), versionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAspectVersion(version))
}

// HandleCreateTemplate handles POST /catalog/templates.
func (h *Handler) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireActor(w, r) {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TemplateRequest](w, r)
	if !ok {
		return
	}

	version, err := h.service.CreateTemplate(ctx, req.Input())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromTemplateVersion(version))
}

// HandleReviseTemplate handles POST /catalog/templates/{templateID}/revisions.
func (h *Handler) HandleReviseTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireActor(w, r) {
		return
	}
	templateID, err := id.ParseTemplateID(chi.URLParam(r, "templateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[TemplateRequest](w, r)
	if !ok {
		return
	}

	version, err := h.service.ReviseTemplate(ctx, templateID, req.Input())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromTemplateVersion(version))
}

// HandleLatestTemplateVersion handles GET /catalog/templates/{templateID}/latest.
func (h *Handler) HandleLatestTemplateVersion(w http.ResponseWriter, r *http.Request) {
	templateID, err := id.ParseTemplateID(chi.URLParam(r, "templateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	version, err := h.service.LatestTemplateVersion(r.Context(), templateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTemplateVersion(version))
}

// HandleResolveTemplate handles GET /borrowers/{borrowerID}/template: which
// template, if any, applies to this borrower right now.
func (h *Handler) HandleResolveTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	borrowerID, err := id.ParseBorrowerID(chi.URLParam(r, "borrowerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.borrowers.GetDetail(ctx, borrowerID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "borrower not found"))
		return
	}
	facilities, err := h.borrowers.ListFacilities(ctx, borrowerID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to load facilities", err))
		return
	}

	templateID, ok, err := h.service.ResolveTemplate(ctx, borrower.VisibilityContext(detail, facilities, nil))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromResolution(templateID, ok))
}
