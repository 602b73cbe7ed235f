package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	catalogmodels "vigil/internal/catalog/models"
	"vigil/internal/catalog/service"
	"vigil/internal/catalog/store"
	"vigil/internal/visibility"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// countingCache records cache traffic so tests can assert read-through and
// invalidation without redis.
type countingCache struct {
	entries     map[id.TemplateID]*catalogmodels.TemplateVersion
	gets, sets  int
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: make(map[id.TemplateID]*catalogmodels.TemplateVersion)}
}

func (c *countingCache) GetLatestTemplateVersion(_ context.Context, templateID id.TemplateID) (*catalogmodels.TemplateVersion, bool) {
	c.gets++
	version, ok := c.entries[templateID]
	return version, ok
}

func (c *countingCache) SetLatestTemplateVersion(_ context.Context, version *catalogmodels.TemplateVersion) {
	c.sets++
	c.entries[version.TemplateID] = version
}

func (c *countingCache) InvalidateTemplate(_ context.Context, templateID id.TemplateID) {
	c.invalidated++
	delete(c.entries, templateID)
}

type CatalogServiceSuite struct {
	suite.Suite
	svc   *service.Service
	cache *countingCache
	ctx   context.Context
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.cache = newCountingCache()
	s.svc = service.New(store.NewInMemory(), s.cache, logger)
	s.ctx = context.Background()
}

func (s *CatalogServiceSuite) options() []service.OptionInput {
	return []service.OptionInput{
		{Label: "Good", Score: 100},
		{Label: "Poor", Score: 0},
	}
}

func (s *CatalogServiceSuite) seedAspect(code string) *catalogmodels.AspectVersion {
	version, err := s.svc.CreateAspect(s.ctx, service.AspectInput{
		Code: code,
		Name: code + " aspect",
		Questions: []service.QuestionInput{
			{Text: "Q1", Weight: 70, Mandatory: true, Options: s.options()},
			{Text: "Q2", Weight: 30, Options: s.options()},
		},
	})
	s.Require().NoError(err)
	return version
}

func (s *CatalogServiceSuite) TestCreateAspectValidation() {
	s.Run("question weights must sum to 100", func() {
		_, err := s.svc.CreateAspect(s.ctx, service.AspectInput{
			Code: "BAD",
			Name: "Bad weights",
			Questions: []service.QuestionInput{
				{Text: "Q1", Weight: 70, Options: s.options()},
				{Text: "Q2", Weight: 40, Options: s.options()},
			},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("duplicate code conflicts", func() {
		s.seedAspect("FIN")
		_, err := s.svc.CreateAspect(s.ctx, service.AspectInput{
			Code: "FIN",
			Name: "Duplicate",
			Questions: []service.QuestionInput{
				{Text: "Q1", Weight: 100, Options: s.options()},
			},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("question without options rejected", func() {
		_, err := s.svc.CreateAspect(s.ctx, service.AspectInput{
			Code: "NOOPT",
			Name: "No options",
			Questions: []service.QuestionInput{
				{Text: "Q1", Weight: 100},
			},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *CatalogServiceSuite) TestReviseAspectAppendsVersion() {
	v1 := s.seedAspect("MGMT")

	v2, err := s.svc.ReviseAspect(s.ctx, v1.AspectID, service.AspectInput{
		Code: "MGMT",
		Name: "Management quality",
		Questions: []service.QuestionInput{
			{Text: "Q1 reworded", Weight: 100, Mandatory: true, Options: s.options()},
		},
	})
	s.Require().NoError(err)
	s.Equal(2, v2.Version)
	s.NotEqual(v1.ID, v2.ID)

	// Revision mints fresh question versions rather than editing v1's.
	s.NotEqual(v1.Questions[0].ID, v2.Questions[0].ID)

	// The prior snapshot stays intact for reports pinned to it.
	stored, err := s.svc.GetAspectVersion(s.ctx, v1.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.Version)
	s.Len(stored.Questions, 2)
	s.Equal("Q1", stored.Questions[0].Text)

	s.Run("unknown aspect", func() {
		_, err := s.svc.ReviseAspect(s.ctx, id.AspectID{}, service.AspectInput{
			Code: "X", Name: "X",
			Questions: []service.QuestionInput{{Text: "Q", Weight: 100, Options: s.options()}},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CatalogServiceSuite) TestAnswerRulePositionTranslation() {
	version, err := s.svc.CreateAspect(s.ctx, service.AspectInput{
		Code: "COND",
		Name: "Conditional",
		Questions: []service.QuestionInput{
			{Text: "Restructured?", Weight: 50, Options: s.options()},
			{
				Text: "Restructuring progress", Weight: 50, Options: s.options(),
				Rules: []service.RuleInput{{
					Source:      visibility.SourceAnswer,
					SourceField: "0",
					Operator:    visibility.OpEqual,
					Value:       "Good",
				}},
			},
		},
	})
	s.Require().NoError(err)

	// The positional reference is resolved to the concrete question version
	// at authoring time, so evaluation never sees an index.
	rule := version.Questions[1].Rules[0]
	s.Equal(version.Questions[0].ID.String(), rule.SourceField)

	s.Run("index out of range", func() {
		_, err := s.svc.CreateAspect(s.ctx, service.AspectInput{
			Code: "OOR",
			Name: "Out of range",
			Questions: []service.QuestionInput{
				{
					Text: "Q", Weight: 100, Options: s.options(),
					Rules: []service.RuleInput{{
						Source:      visibility.SourceAnswer,
						SourceField: "5",
						Operator:    visibility.OpEqual,
						Value:       "Good",
					}},
				},
			},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("non-index non-id reference", func() {
		_, err := s.svc.CreateAspect(s.ctx, service.AspectInput{
			Code: "BADREF",
			Name: "Bad reference",
			Questions: []service.QuestionInput{
				{
					Text: "Q", Weight: 100, Options: s.options(),
					Rules: []service.RuleInput{{
						Source:      visibility.SourceAnswer,
						SourceField: "not-a-reference",
						Operator:    visibility.OpEqual,
						Value:       "Good",
					}},
				},
			},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *CatalogServiceSuite) TestTemplateValidation() {
	aspect := s.seedAspect("FIN")

	s.Run("weights must sum to 100", func() {
		_, err := s.svc.CreateTemplate(s.ctx, service.TemplateInput{
			Code:    "T1",
			Name:    "Template",
			Aspects: []service.TemplateAspectInput{{AspectVID: aspect.ID, Weight: 90}},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown aspect version rejected", func() {
		_, err := s.svc.CreateTemplate(s.ctx, service.TemplateInput{
			Code:    "T2",
			Name:    "Template",
			Aspects: []service.TemplateAspectInput{{AspectVID: id.AspectVersionID{}, Weight: 100}},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *CatalogServiceSuite) TestResolveTemplate() {
	aspect := s.seedAspect("FIN")

	restricted, err := s.svc.CreateTemplate(s.ctx, service.TemplateInput{
		Code:    "AGRI",
		Name:    "Agriculture only",
		Aspects: []service.TemplateAspectInput{{AspectVID: aspect.ID, Weight: 100}},
		Rules: []service.RuleInput{{
			Source:      visibility.SourceBorrowerDetail,
			SourceField: "economic_sector",
			Operator:    visibility.OpEqual,
			Value:       "agriculture",
		}},
	})
	s.Require().NoError(err)

	open, err := s.svc.CreateTemplate(s.ctx, service.TemplateInput{
		Code:    "GENERAL",
		Name:    "No restrictions",
		Aspects: []service.TemplateAspectInput{{AspectVID: aspect.ID, Weight: 100}},
	})
	s.Require().NoError(err)

	s.Run("rules gate applicability", func() {
		resolved, ok, err := s.svc.ResolveTemplate(s.ctx, visibility.Context{
			Borrower: map[string]any{"economic_sector": "manufacturing"},
		})
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(open.TemplateID, resolved)
	})

	s.Run("matching rules win", func() {
		resolved, ok, err := s.svc.ResolveTemplate(s.ctx, visibility.Context{
			Borrower: map[string]any{"economic_sector": "agriculture"},
		})
		s.Require().NoError(err)
		s.True(ok)

		// Both templates match an agriculture borrower; either may win
		// depending on id order, but the restricted one must be eligible.
		s.Contains([]id.TemplateID{restricted.TemplateID, open.TemplateID}, resolved)
	})

	s.Run("no match is not an error", func() {
		uncached := service.New(store.NewInMemory(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, ok, err := uncached.ResolveTemplate(s.ctx, visibility.Context{
			Borrower: map[string]any{"economic_sector": "mining"},
		})
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *CatalogServiceSuite) TestCacheReadThroughAndInvalidation() {
	aspect := s.seedAspect("FIN")
	created, err := s.svc.CreateTemplate(s.ctx, service.TemplateInput{
		Code:    "CACHED",
		Name:    "Cached template",
		Aspects: []service.TemplateAspectInput{{AspectVID: aspect.ID, Weight: 100}},
	})
	s.Require().NoError(err)

	// First read misses and populates; second read is served from cache.
	setsBefore := s.cache.sets
	v1, err := s.svc.LatestTemplateVersion(s.ctx, created.TemplateID)
	s.Require().NoError(err)
	s.Equal(setsBefore+1, s.cache.sets)

	v2, err := s.svc.LatestTemplateVersion(s.ctx, created.TemplateID)
	s.Require().NoError(err)
	s.Equal(v1.ID, v2.ID)
	s.Equal(setsBefore+1, s.cache.sets)

	// Revising drops the stale entry so the next read sees version 2.
	revised, err := s.svc.ReviseTemplate(s.ctx, created.TemplateID, service.TemplateInput{
		Code:    "CACHED",
		Name:    "Cached template",
		Aspects: []service.TemplateAspectInput{{AspectVID: aspect.ID, Weight: 100}},
	})
	s.Require().NoError(err)
	s.Equal(2, revised.Version)
	s.NotZero(s.cache.invalidated)

	latest, err := s.svc.LatestTemplateVersion(s.ctx, created.TemplateID)
	s.Require().NoError(err)
	s.Equal(2, latest.Version)
}
