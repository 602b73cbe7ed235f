package handler

import (
	"strings"
	"time"

	"vigil/internal/watchlist/models"
	dErrors "vigil/pkg/domain-errors"
)

// AddNoteRequest is the HTTP request body for POST /watchlists/{id}/notes.
type AddNoteRequest struct {
	Period string `json:"period"`
	Body   string `json:"body"`
}

func (r *AddNoteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Period = strings.TrimSpace(r.Period)
	if r.Period == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "period is required")
	}
	return nil
}

// CarryForwardRequest is the HTTP request body for
// POST /watchlists/{id}/carry-forward.
type CarryForwardRequest struct {
	Period string `json:"period"`
}

func (r *CarryForwardRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Period = strings.TrimSpace(r.Period)
	if r.Period == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "period is required")
	}
	return nil
}

// AddItemRequest is the HTTP request body for POST /notes/{id}/items.
type AddItemRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	DueDate     string `json:"due_date,omitempty"`

	parsedCategory models.ItemCategory
	parsedDueDate  *time.Time
}

func (r *AddItemRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	category, err := models.ParseItemCategory(r.Category)
	if err != nil {
		return err
	}
	r.parsedCategory = category

	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "description is required")
	}

	if r.DueDate != "" {
		due, err := time.Parse("2006-01-02", r.DueDate)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "due_date must be YYYY-MM-DD")
		}
		r.parsedDueDate = &due
	}
	return nil
}

func (r *AddItemRequest) ParsedCategory() models.ItemCategory { return r.parsedCategory }
func (r *AddItemRequest) ParsedDueDate() *time.Time           { return r.parsedDueDate }

// ItemStatusRequest is the HTTP request body for PUT /items/{id}/status.
type ItemStatusRequest struct {
	Status string `json:"status"`

	parsedStatus models.ItemStatus
}

func (r *ItemStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	status, err := models.ParseItemStatus(r.Status)
	if err != nil {
		return err
	}
	r.parsedStatus = status
	return nil
}

func (r *ItemStatusRequest) ParsedStatus() models.ItemStatus { return r.parsedStatus }
