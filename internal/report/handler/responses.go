package handler

import (
	"time"

	"vigil/internal/report/models"
)

// ReportResponse is the HTTP representation of a report.
type ReportResponse struct {
	ID                string    `json:"id"`
	BorrowerID        string    `json:"borrower_id"`
	Period            string    `json:"period"`
	TemplateVersionID string    `json:"template_version_id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func FromReport(report *models.Report) *ReportResponse {
	return &ReportResponse{
		ID:                report.ID.String(),
		BorrowerID:        report.BorrowerID.String(),
		Period:            report.Period,
		TemplateVersionID: report.TemplateV.String(),
		Status:            string(report.Status),
		CreatedAt:         report.CreatedAt,
		UpdatedAt:         report.UpdatedAt,
	}
}

// AnswerResponse is the HTTP representation of a stored answer.
type AnswerResponse struct {
	ID                string    `json:"id"`
	QuestionVersionID string    `json:"question_version_id"`
	OptionID          string    `json:"option_id"`
	AnsweredAt        time.Time `json:"answered_at"`
}

func FromAnswer(answer *models.Answer) *AnswerResponse {
	return &AnswerResponse{
		ID:                answer.ID.String(),
		QuestionVersionID: answer.QuestionV.String(),
		OptionID:          answer.OptionID.String(),
		AnsweredAt:        answer.AnsweredAt,
	}
}

// SummaryResponse is the HTTP representation of a report summary.
type SummaryResponse struct {
	ReportID                string    `json:"report_id"`
	TotalScore              float64   `json:"total_score"`
	ComputedClassification  string    `json:"computed_classification"`
	EffectiveClassification string    `json:"effective_classification"`
	Collectibility          int       `json:"collectibility"`
	Override                *string   `json:"override,omitempty"`
	OverrideReason          string    `json:"override_reason,omitempty"`
	Notes                   string    `json:"notes,omitempty"`
	ComputedAt              time.Time `json:"computed_at"`
}

func FromSummary(summary *models.Summary) *SummaryResponse {
	resp := &SummaryResponse{
		ReportID:                summary.ReportID.String(),
		TotalScore:              summary.TotalScore,
		ComputedClassification:  string(summary.Classification),
		EffectiveClassification: string(summary.FinalClassification()),
		Collectibility:          summary.Collectibility.Int(),
		OverrideReason:          summary.OverrideReason,
		Notes:                   summary.Notes,
		ComputedAt:              summary.ComputedAt,
	}
	if summary.Override != nil {
		override := string(*summary.Override)
		resp.Override = &override
	}
	return resp
}

// AspectResultResponse is one aspect row of the results payload.
type AspectResultResponse struct {
	AspectVersionID string  `json:"aspect_version_id"`
	Score           float64 `json:"score"`
	Classification  string  `json:"classification"`
}

// ResultsResponse is the HTTP response for GET /reports/{id}/results.
type ResultsResponse struct {
	Aspects []AspectResultResponse `json:"aspects"`
	Summary *SummaryResponse       `json:"summary"`
}

func FromResults(aspects []*models.AspectResult, summary *models.Summary) *ResultsResponse {
	resp := &ResultsResponse{
		Aspects: make([]AspectResultResponse, 0, len(aspects)),
		Summary: FromSummary(summary),
	}
	for _, aspect := range aspects {
		resp.Aspects = append(resp.Aspects, AspectResultResponse{
			AspectVersionID: aspect.AspectV.String(),
			Score:           aspect.Score,
			Classification:  string(aspect.Classification),
		})
	}
	return resp
}
