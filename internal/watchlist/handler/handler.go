package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vigil/internal/watchlist/models"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/httputil"
	"vigil/pkg/requestcontext"
)

// Service defines the watchlist operations the HTTP surface exposes.
// Lifecycle transitions are not here on purpose: watchlists open and close
// through report classification only.
type Service interface {
	ActiveForBorrower(ctx context.Context, borrowerID id.BorrowerID) (*models.Watchlist, error)
	AddNote(ctx context.Context, watchlistID id.WatchlistID, period, body string) (*models.MonitoringNote, error)
	AddActionItem(ctx context.Context, noteID id.NoteID, category models.ItemCategory, description string, dueDate *time.Time) (*models.ActionItem, error)
	TransitionActionItem(ctx context.Context, itemID id.ActionItemID, to models.ItemStatus) error
	CarryForward(ctx context.Context, watchlistID id.WatchlistID, newPeriod string) (*models.MonitoringNote, int, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts watchlist endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/borrowers/{borrowerID}/watchlist", h.HandleActive)
	r.Post("/watchlists/{watchlistID}/notes", h.HandleAddNote)
	r.Post("/watchlists/{watchlistID}/carry-forward", h.HandleCarryForward)
	r.Post("/notes/{noteID}/items", h.HandleAddItem)
	r.Put("/items/{itemID}/status", h.HandleItemStatus)
}

func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) bool {
	if requestcontext.ActorID(r.Context()) == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return false
	}
	return true
}

// HandleActive handles GET /borrowers/{borrowerID}/watchlist.
func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	borrowerID, err := id.ParseBorrowerID(chi.URLParam(r, "borrowerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	watchlist, err := h.service.ActiveForBorrower(r.Context(), borrowerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromWatchlist(watchlist))
}

// HandleAddNote handles POST /watchlists/{watchlistID}/notes.
func (h *Handler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	if !h.requireActor(w, r) {
		return
	}
	watchlistID, err := id.ParseWatchlistID(chi.URLParam(r, "watchlistID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddNoteRequest](w, r)
	if !ok {
		return
	}

	note, err := h.service.AddNote(r.Context(), watchlistID, req.Period, req.Body)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromNote(note))
}

// HandleCarryForward handles POST /watchlists/{watchlistID}/carry-forward.
func (h *Handler) HandleCarryForward(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireActor(w, r) {
		return
	}
	watchlistID, err := id.ParseWatchlistID(chi.URLParam(r, "watchlistID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CarryForwardRequest](w, r)
	if !ok {
		return
	}

	note, carried, err := h.service.CarryForward(ctx, watchlistID, req.Period)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "carry-forward served",
		"request_id", requestcontext.RequestID(ctx),
		"watchlist_id", watchlistID,
		"carried", carried,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromCarryForward(note, carried))
}

// HandleAddItem handles POST /notes/{noteID}/items.
func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireActor(w, r) {
		return
	}
	noteID, err := id.ParseNoteID(chi.URLParam(r, "noteID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.service.AddActionItem(r.Context(), noteID, req.ParsedCategory(), req.Description, req.ParsedDueDate())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromItem(item))
}

// HandleItemStatus handles PUT /items/{itemID}/status.
func (h *Handler) HandleItemStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireActor(w, r) {
		return
	}
	itemID, err := id.ParseActionItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ItemStatusRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.TransitionActionItem(r.Context(), itemID, req.ParsedStatus()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
