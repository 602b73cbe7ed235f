package handler

import (
	"strings"

	"vigil/internal/catalog/service"
	"vigil/internal/visibility"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// RuleRequest is one authored visibility rule. For answer-sourced rules the
// source_field may name a sibling question by zero-based position or carry a
// concrete question version id.
type RuleRequest struct {
	Source      string `json:"source"`
	SourceField string `json:"source_field"`
	Operator    string `json:"operator"`
	Value       string `json:"value"`
}

func (r RuleRequest) input() service.RuleInput {
	return service.RuleInput{
		Source:      visibility.SourceType(r.Source),
		SourceField: r.SourceField,
		Operator:    visibility.Operator(r.Operator),
		Value:       r.Value,
	}
}

func ruleInputs(rules []RuleRequest) []service.RuleInput {
	out := make([]service.RuleInput, 0, len(rules))
	for _, rule := range rules {
		out = append(out, rule.input())
	}
	return out
}

// OptionRequest is one selectable answer for a question.
type OptionRequest struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// QuestionRequest is one authored question.
type QuestionRequest struct {
	Text      string          `json:"text"`
	Weight    float64         `json:"weight"`
	Mandatory bool            `json:"mandatory"`
	Options   []OptionRequest `json:"options"`
	Rules     []RuleRequest   `json:"rules,omitempty"`
}

// AspectRequest is the HTTP request body for aspect creation and revision.
type AspectRequest struct {
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Questions   []QuestionRequest `json:"questions"`
	Rules       []RuleRequest     `json:"rules,omitempty"`
}

func (r *AspectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "code is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(r.Questions) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one question is required")
	}
	// Weight and option constraints live in the service; this layer only
	// rejects structurally empty input.
	return nil
}

// Input converts the validated request into service input.
func (r *AspectRequest) Input() service.AspectInput {
	input := service.AspectInput{
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Rules:       ruleInputs(r.Rules),
	}
	for _, question := range r.Questions {
		questionInput := service.QuestionInput{
			Text:      question.Text,
			Weight:    question.Weight,
			Mandatory: question.Mandatory,
			Rules:     ruleInputs(question.Rules),
		}
		for _, option := range question.Options {
			questionInput.Options = append(questionInput.Options, service.OptionInput{
				Label: option.Label,
				Score: option.Score,
			})
		}
		input.Questions = append(input.Questions, questionInput)
	}
	return input
}

// TemplateAspectRequest is one weighted aspect assignment.
type TemplateAspectRequest struct {
	AspectVersionID string  `json:"aspect_version_id"`
	Weight          float64 `json:"weight"`
}

// TemplateRequest is the HTTP request body for template creation and
// revision.
type TemplateRequest struct {
	Code    string                  `json:"code"`
	Name    string                  `json:"name"`
	Aspects []TemplateAspectRequest `json:"aspects"`
	Rules   []RuleRequest           `json:"rules,omitempty"`

	parsedAspects []service.TemplateAspectInput
}

func (r *TemplateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "code is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(r.Aspects) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one aspect is required")
	}

	r.parsedAspects = r.parsedAspects[:0]
	for _, aspect := range r.Aspects {
		aspectVID, err := id.ParseAspectVersionID(aspect.AspectVersionID)
		if err != nil {
			return err
		}
		r.parsedAspects = append(r.parsedAspects, service.TemplateAspectInput{
			AspectVID: aspectVID,
			Weight:    aspect.Weight,
		})
	}
	return nil
}

// Input converts the validated request into service input.
func (r *TemplateRequest) Input() service.TemplateInput {
	return service.TemplateInput{
		Code:    r.Code,
		Name:    r.Name,
		Aspects: r.parsedAspects,
		Rules:   ruleInputs(r.Rules),
	}
}
