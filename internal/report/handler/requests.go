package handler

import (
	"strings"

	"vigil/internal/report/service"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// CreateReportRequest is the HTTP request body for POST /reports.
type CreateReportRequest struct {
	BorrowerID string `json:"borrower_id"`
	Period     string `json:"period"`
	TemplateID string `json:"template_id,omitempty"`

	parsedBorrowerID id.BorrowerID
	parsedTemplateID *id.TemplateID
}

func (r *CreateReportRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	borrowerID, err := id.ParseBorrowerID(r.BorrowerID)
	if err != nil {
		return err
	}
	r.parsedBorrowerID = borrowerID

	r.Period = strings.TrimSpace(r.Period)
	if r.Period == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "period is required")
	}

	if r.TemplateID != "" {
		templateID, err := id.ParseTemplateID(r.TemplateID)
		if err != nil {
			return err
		}
		r.parsedTemplateID = &templateID
	}
	return nil
}

// Input converts the validated request into service input.
func (r *CreateReportRequest) Input() service.CreateReportInput {
	return service.CreateReportInput{
		BorrowerID: r.parsedBorrowerID,
		Period:     r.Period,
		TemplateID: r.parsedTemplateID,
	}
}

// SaveAnswerRequest is the HTTP request body for PUT /reports/{id}/answers.
type SaveAnswerRequest struct {
	QuestionVersionID string `json:"question_version_id"`
	OptionID          string `json:"option_id"`

	parsedQuestionVID id.QuestionVersionID
	parsedOptionID    id.QuestionOptionID
}

func (r *SaveAnswerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	questionVID, err := id.ParseQuestionVersionID(r.QuestionVersionID)
	if err != nil {
		return err
	}
	r.parsedQuestionVID = questionVID

	optionID, err := id.ParseQuestionOptionID(r.OptionID)
	if err != nil {
		return err
	}
	r.parsedOptionID = optionID
	return nil
}

func (r *SaveAnswerRequest) ParsedQuestionVersionID() id.QuestionVersionID {
	return r.parsedQuestionVID
}

func (r *SaveAnswerRequest) ParsedOptionID() id.QuestionOptionID {
	return r.parsedOptionID
}

// OverrideRequest is the HTTP request body for POST /reports/{id}/override.
type OverrideRequest struct {
	Classification string `json:"classification"`
	Reason         string `json:"reason"`

	parsedClassification id.Classification
}

func (r *OverrideRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	classification, err := id.ParseClassification(r.Classification)
	if err != nil {
		return err
	}
	r.parsedClassification = classification

	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "override reason is required")
	}
	return nil
}

func (r *OverrideRequest) ParsedClassification() id.Classification {
	return r.parsedClassification
}
