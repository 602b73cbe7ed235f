// Package models defines the questionnaire catalog: templates, aspects,
// questions and their options.
//
// Aspects and templates version by appending rows. Editing an aspect creates
// AspectVersion N+1 with fresh question versions; historical versions are
// never mutated, so reports scored against version N keep referencing
// version N forever.
package models

import (
	"time"

	"vigil/internal/visibility"
	id "vigil/pkg/domain"
)

// Aspect is a named risk dimension identified by a stable code.
type Aspect struct {
	ID        id.AspectID
	Code      string
	Name      string
	CreatedAt time.Time
}

// AspectVersion is an immutable snapshot of an aspect's questions and
// weights. Version numbers are strictly increasing per aspect, starting at 1.
type AspectVersion struct {
	ID          id.AspectVersionID
	AspectID    id.AspectID
	Version     int
	Name        string
	Description string
	Questions   []QuestionVersion
	Rules       []visibility.Rule
	CreatedAt   time.Time
}

// QuestionVersion belongs to exactly one aspect version. Weight is a
// percentage; sibling weights must sum to 100, validated at authoring time
// only and never re-checked during scoring.
type QuestionVersion struct {
	ID        id.QuestionVersionID
	AspectVID id.AspectVersionID
	Position  int
	Text      string
	Weight    float64
	Mandatory bool
	Options   []QuestionOption
	Rules     []visibility.Rule
}

// QuestionOption is a selectable answer. Scores may be negative to penalize
// red-flag answers heavily.
type QuestionOption struct {
	ID        id.QuestionOptionID
	QuestionV id.QuestionVersionID
	Label     string
	Score     float64
}

// Option returns the option with the given id, or nil.
func (q *QuestionVersion) Option(optionID id.QuestionOptionID) *QuestionOption {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i]
		}
	}
	return nil
}

// Template is a named bundle of weighted aspects defining one scoring
// configuration.
type Template struct {
	ID        id.TemplateID
	Code      string
	Name      string
	CreatedAt time.Time
}

// AspectWeight assigns a template-version-scoped weight to an aspect
// version. Weights sum to 100 across one template version.
type AspectWeight struct {
	AspectVID id.AspectVersionID
	Weight    float64
}

// TemplateVersion is an immutable template snapshot: weighted aspect
// assignments plus the template-level applicability rules.
type TemplateVersion struct {
	ID         id.TemplateVersionID
	TemplateID id.TemplateID
	Version    int
	Weights    []AspectWeight
	Rules      []visibility.Rule
	CreatedAt  time.Time
}

// WeightFor returns the weight assigned to an aspect version, or 0 when the
// aspect is not part of this template version. Missing aspects silently
// contribute nothing to the overall score.
func (tv *TemplateVersion) WeightFor(aspectVID id.AspectVersionID) float64 {
	for _, w := range tv.Weights {
		if w.AspectVID == aspectVID {
			return w.Weight
		}
	}
	return 0
}
