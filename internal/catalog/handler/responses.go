package handler

import (
	"time"

	"vigil/internal/catalog/models"
	id "vigil/pkg/domain"
)

// OptionResponse is one selectable answer with its authored score.
type OptionResponse struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// QuestionResponse is one question of an aspect version.
type QuestionResponse struct {
	ID        string           `json:"id"`
	Position  int              `json:"position"`
	Text      string           `json:"text"`
	Weight    float64          `json:"weight"`
	Mandatory bool             `json:"mandatory"`
	Options   []OptionResponse `json:"options"`
}

// AspectVersionResponse is the HTTP representation of an immutable aspect
// snapshot.
type AspectVersionResponse struct {
	ID        string             `json:"id"`
	AspectID  string             `json:"aspect_id"`
	Version   int                `json:"version"`
	Name      string             `json:"name"`
	Questions []QuestionResponse `json:"questions"`
	CreatedAt time.Time          `json:"created_at"`
}

func FromAspectVersion(version *models.AspectVersion) *AspectVersionResponse {
	resp := &AspectVersionResponse{
		ID:        version.ID.String(),
		AspectID:  version.AspectID.String(),
		Version:   version.Version,
		Name:      version.Name,
		CreatedAt: version.CreatedAt,
	}
	for _, question := range version.Questions {
		questionResp := QuestionResponse{
			ID:        question.ID.String(),
			Position:  question.Position,
			Text:      question.Text,
			Weight:    question.Weight,
			Mandatory: question.Mandatory,
		}
		for _, option := range question.Options {
			questionResp.Options = append(questionResp.Options, OptionResponse{
				ID:    option.ID.String(),
				Label: option.Label,
				Score: option.Score,
			})
		}
		resp.Questions = append(resp.Questions, questionResp)
	}
	return resp
}

// AspectWeightResponse is one weighted aspect assignment.
type AspectWeightResponse struct {
	AspectVersionID string  `json:"aspect_version_id"`
	Weight          float64 `json:"weight"`
}

// TemplateVersionResponse is the HTTP representation of an immutable
// template snapshot.
type TemplateVersionResponse struct {
	ID         string                 `json:"id"`
	TemplateID string                 `json:"template_id"`
	Version    int                    `json:"version"`
	Aspects    []AspectWeightResponse `json:"aspects"`
	CreatedAt  time.Time              `json:"created_at"`
}

func FromTemplateVersion(version *models.TemplateVersion) *TemplateVersionResponse {
	resp := &TemplateVersionResponse{
		ID:         version.ID.String(),
		TemplateID: version.TemplateID.String(),
		Version:    version.Version,
		CreatedAt:  version.CreatedAt,
	}
	for _, weight := range version.Weights {
		resp.Aspects = append(resp.Aspects, AspectWeightResponse{
			AspectVersionID: weight.AspectVID.String(),
			Weight:          weight.Weight,
		})
	}
	return resp
}

// ResolutionResponse reports the applicable template for a borrower, if any.
type ResolutionResponse struct {
	Applicable bool   `json:"applicable"`
	TemplateID string `json:"template_id,omitempty"`
}

func FromResolution(templateID id.TemplateID, ok bool) *ResolutionResponse {
	resp := &ResolutionResponse{Applicable: ok}
	if ok {
		resp.TemplateID = templateID.String()
	}
	return resp
}
