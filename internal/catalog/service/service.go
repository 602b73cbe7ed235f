// Package service owns catalog authoring and template resolution.
//
// Authoring is where all weight invariants are enforced: question weights
// must sum to 100 within an aspect version and aspect weights must sum to
// 100 within a template version. Scoring never re-validates these.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"vigil/internal/catalog/models"
	"vigil/internal/catalog/store"
	"vigil/internal/visibility"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/sentinel"
)

// weightTolerance absorbs float drift when validating percentage sums.
const weightTolerance = 0.001

// Cache is an optional read-through cache for latest template versions.
// A nil Cache disables caching entirely.
type Cache interface {
	GetLatestTemplateVersion(ctx context.Context, templateID id.TemplateID) (*models.TemplateVersion, bool)
	SetLatestTemplateVersion(ctx context.Context, version *models.TemplateVersion)
	InvalidateTemplate(ctx context.Context, templateID id.TemplateID)
}

type Service struct {
	store  store.Store
	cache  Cache
	logger *slog.Logger
}

func New(store store.Store, cache Cache, logger *slog.Logger) *Service {
	return &Service{store: store, cache: cache, logger: logger}
}

// RuleInput is an authored visibility condition. For answer-sourced rules
// the SourceField may reference a sibling question by zero-based position;
// CreateAspect and ReviseAspect translate the position into the concrete
// question version id so evaluation never deals with indexes.
type RuleInput struct {
	Source      visibility.SourceType
	SourceField string
	Operator    visibility.Operator
	Value       string
}

type OptionInput struct {
	Label string
	Score float64
}

type QuestionInput struct {
	Text      string
	Weight    float64
	Mandatory bool
	Options   []OptionInput
	Rules     []RuleInput
}

type AspectInput struct {
	Code        string
	Name        string
	Description string
	Questions   []QuestionInput
	Rules       []RuleInput
}

// CreateAspect creates a new aspect with version 1.
func (s *Service) CreateAspect(ctx context.Context, input AspectInput) (*models.AspectVersion, error) {
	if err := validateAspectInput(input); err != nil {
		return nil, err
	}

	aspect := &models.Aspect{
		ID:        id.AspectID(uuid.New()),
		Code:      input.Code,
		Name:      input.Name,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateAspect(ctx, aspect); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "aspect code already exists")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create aspect", err)
	}

	version, err := s.buildAspectVersion(aspect.ID, 1, input)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateAspectVersion(ctx, version); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create aspect version", err)
	}

	s.logger.InfoContext(ctx, "aspect created",
		"aspect_id", aspect.ID,
		"code", aspect.Code,
		"questions", len(version.Questions),
	)
	return version, nil
}

// ReviseAspect appends version N+1 with fresh question versions. Prior
// versions and any report rows referencing them are untouched.
func (s *Service) ReviseAspect(ctx context.Context, aspectID id.AspectID, input AspectInput) (*models.AspectVersion, error) {
	if err := validateAspectInput(input); err != nil {
		return nil, err
	}

	latest, err := s.store.LatestAspectVersion(ctx, aspectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "aspect not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load aspect", err)
	}

	version, err := s.buildAspectVersion(aspectID, latest.Version+1, input)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateAspectVersion(ctx, version); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create aspect version", err)
	}

	s.logger.InfoContext(ctx, "aspect revised",
		"aspect_id", aspectID,
		"version", version.Version,
	)
	return version, nil
}

func (s *Service) buildAspectVersion(aspectID id.AspectID, versionNum int, input AspectInput) (*models.AspectVersion, error) {
	version := &models.AspectVersion{
		ID:          id.AspectVersionID(uuid.New()),
		AspectID:    aspectID,
		Version:     versionNum,
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   time.Now(),
	}

	questionIDs := make([]id.QuestionVersionID, len(input.Questions))
	for i := range input.Questions {
		questionIDs[i] = id.QuestionVersionID(uuid.New())
	}

	for i, questionInput := range input.Questions {
		question := models.QuestionVersion{
			ID:        questionIDs[i],
			AspectVID: version.ID,
			Position:  i,
			Text:      questionInput.Text,
			Weight:    questionInput.Weight,
			Mandatory: questionInput.Mandatory,
		}
		for _, optionInput := range questionInput.Options {
			question.Options = append(question.Options, models.QuestionOption{
				ID:        id.QuestionOptionID(uuid.New()),
				QuestionV: question.ID,
				Label:     optionInput.Label,
				Score:     optionInput.Score,
			})
		}
		rules, err := resolveRules(questionInput.Rules, visibility.OwnerRef{Kind: visibility.OwnerQuestion, ID: uuid.UUID(question.ID)}, questionIDs)
		if err != nil {
			return nil, err
		}
		question.Rules = rules
		version.Questions = append(version.Questions, question)
	}

	rules, err := resolveRules(input.Rules, visibility.OwnerRef{Kind: visibility.OwnerAspect, ID: uuid.UUID(version.ID)}, questionIDs)
	if err != nil {
		return nil, err
	}
	version.Rules = rules
	return version, nil
}

// resolveRules materializes rule inputs, translating positional answer
// references into concrete question version ids.
func resolveRules(inputs []RuleInput, owner visibility.OwnerRef, questionIDs []id.QuestionVersionID) ([]visibility.Rule, error) {
	var rules []visibility.Rule
	for _, input := range inputs {
		rule := visibility.Rule{
			ID:          uuid.New(),
			Owner:       owner,
			Source:      input.Source,
			SourceField: input.SourceField,
			Operator:    input.Operator,
			Value:       input.Value,
		}
		if input.Source == visibility.SourceAnswer {
			if index, err := strconv.Atoi(input.SourceField); err == nil {
				if index < 0 || index >= len(questionIDs) {
					return nil, dErrors.New(dErrors.CodeInvalidInput, "answer rule references question index out of range")
				}
				rule.SourceField = questionIDs[index].String()
			} else if _, err := id.ParseQuestionVersionID(input.SourceField); err != nil {
				return nil, dErrors.New(dErrors.CodeInvalidInput, "answer rule must reference a question index or question version id")
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func validateAspectInput(input AspectInput) error {
	if input.Code == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "aspect code is required")
	}
	if input.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "aspect name is required")
	}
	if len(input.Questions) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "aspect requires at least one question")
	}
	var sum float64
	for _, question := range input.Questions {
		if question.Text == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "question text is required")
		}
		if question.Weight < 0 {
			return dErrors.New(dErrors.CodeInvalidInput, "question weight cannot be negative")
		}
		if len(question.Options) == 0 {
			return dErrors.New(dErrors.CodeInvalidInput, "question requires at least one option")
		}
		sum += question.Weight
	}
	if math.Abs(sum-100) > weightTolerance {
		return dErrors.New(dErrors.CodeInvalidInput, "question weights must sum to 100")
	}
	return nil
}

type TemplateAspectInput struct {
	AspectVID id.AspectVersionID
	Weight    float64
}

type TemplateInput struct {
	Code    string
	Name    string
	Aspects []TemplateAspectInput
	Rules   []RuleInput
}

// CreateTemplate creates a new template with version 1.
func (s *Service) CreateTemplate(ctx context.Context, input TemplateInput) (*models.TemplateVersion, error) {
	if err := s.validateTemplateInput(ctx, input); err != nil {
		return nil, err
	}

	template := &models.Template{
		ID:        id.TemplateID(uuid.New()),
		Code:      input.Code,
		Name:      input.Name,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateTemplate(ctx, template); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "template code already exists")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create template", err)
	}

	return s.appendTemplateVersion(ctx, template.ID, 1, input)
}

// ReviseTemplate appends template version N+1.
func (s *Service) ReviseTemplate(ctx context.Context, templateID id.TemplateID, input TemplateInput) (*models.TemplateVersion, error) {
	if err := s.validateTemplateInput(ctx, input); err != nil {
		return nil, err
	}

	latest, err := s.store.LatestTemplateVersion(ctx, templateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load template", err)
	}

	return s.appendTemplateVersion(ctx, templateID, latest.Version+1, input)
}

func (s *Service) appendTemplateVersion(ctx context.Context, templateID id.TemplateID, versionNum int, input TemplateInput) (*models.TemplateVersion, error) {
	version := &models.TemplateVersion{
		ID:         id.TemplateVersionID(uuid.New()),
		TemplateID: templateID,
		Version:    versionNum,
		CreatedAt:  time.Now(),
	}
	for _, aspect := range input.Aspects {
		version.Weights = append(version.Weights, models.AspectWeight{
			AspectVID: aspect.AspectVID,
			Weight:    aspect.Weight,
		})
	}
	rules, err := resolveRules(input.Rules, visibility.OwnerRef{Kind: visibility.OwnerTemplate, ID: uuid.UUID(version.ID)}, nil)
	if err != nil {
		return nil, err
	}
	version.Rules = rules

	if err := s.store.CreateTemplateVersion(ctx, version); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create template version", err)
	}

	if s.cache != nil {
		s.cache.InvalidateTemplate(ctx, templateID)
	}

	s.logger.InfoContext(ctx, "template version created",
		"template_id", templateID,
		"version", versionNum,
	)
	return version, nil
}

func (s *Service) validateTemplateInput(ctx context.Context, input TemplateInput) error {
	if input.Code == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "template code is required")
	}
	if len(input.Aspects) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "template requires at least one aspect")
	}
	var sum float64
	for _, aspect := range input.Aspects {
		if _, err := s.store.GetAspectVersion(ctx, aspect.AspectVID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeInvalidInput, "template references unknown aspect version")
			}
			return dErrors.Wrap(dErrors.CodeInternal, "failed to verify aspect version", err)
		}
		if aspect.Weight < 0 {
			return dErrors.New(dErrors.CodeInvalidInput, "aspect weight cannot be negative")
		}
		sum += aspect.Weight
	}
	if math.Abs(sum-100) > weightTolerance {
		return dErrors.New(dErrors.CodeInvalidInput, "aspect weights must sum to 100")
	}
	return nil
}

// ResolveTemplate finds the applicable template for a borrower. Templates
// are enumerated in id-ascending order and the first whose latest version's
// rules all pass wins; ok is false when none match and the caller decides
// how to surface that.
func (s *Service) ResolveTemplate(ctx context.Context, evalCtx visibility.Context) (id.TemplateID, bool, error) {
	templates, err := s.store.ListTemplates(ctx)
	if err != nil {
		return id.TemplateID{}, false, dErrors.Wrap(dErrors.CodeInternal, "failed to list templates", err)
	}

	for _, template := range templates {
		latest, err := s.latestTemplateVersion(ctx, template.ID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// A template without versions cannot apply.
				continue
			}
			return id.TemplateID{}, false, dErrors.Wrap(dErrors.CodeInternal, "failed to load template version", err)
		}
		if visibility.Visible(latest.Rules, evalCtx) {
			return template.ID, true, nil
		}
	}
	return id.TemplateID{}, false, nil
}

// latestTemplateVersion reads through the cache when one is configured.
func (s *Service) latestTemplateVersion(ctx context.Context, templateID id.TemplateID) (*models.TemplateVersion, error) {
	if s.cache != nil {
		if version, ok := s.cache.GetLatestTemplateVersion(ctx, templateID); ok {
			return version, nil
		}
	}
	version, err := s.store.LatestTemplateVersion(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetLatestTemplateVersion(ctx, version)
	}
	return version, nil
}

// LatestTemplateVersion exposes the cached read for collaborators that need
// template weights, such as the report scoring flow.
func (s *Service) LatestTemplateVersion(ctx context.Context, templateID id.TemplateID) (*models.TemplateVersion, error) {
	version, err := s.latestTemplateVersion(ctx, templateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "template version not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load template version", err)
	}
	return version, nil
}

// GetAspectVersion loads one immutable aspect snapshot.
func (s *Service) GetAspectVersion(ctx context.Context, versionID id.AspectVersionID) (*models.AspectVersion, error) {
	version, err := s.store.GetAspectVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "aspect version not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load aspect version", err)
	}
	return version, nil
}

// GetTemplateVersion loads one immutable template snapshot.
func (s *Service) GetTemplateVersion(ctx context.Context, versionID id.TemplateVersionID) (*models.TemplateVersion, error) {
	version, err := s.store.GetTemplateVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "template version not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load template version", err)
	}
	return version, nil
}
