// Package visibility evaluates conditional display rules for templates,
// aspects and questions. Evaluation is pure: rules and borrower data go in,
// a boolean comes out. Anything the evaluator cannot resolve fails closed.
package visibility

import (
	"github.com/google/uuid"
)

// SourceType selects where a rule reads its left-hand operand from.
type SourceType string

const (
	SourceBorrowerDetail   SourceType = "borrower_detail"
	SourceBorrowerFacility SourceType = "borrower_facility"
	SourceAnswer           SourceType = "answer"
)

// Operator is the comparison applied between source value and rule value.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpGreater        Operator = ">"
	OpLess           Operator = "<"
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpIn             Operator = "in"
	OpNotIn          Operator = "not_in"
	OpContains       Operator = "contains"
	OpNotContains    Operator = "not_contains"
)

// OwnerKind names the entity type a rule is attached to.
type OwnerKind string

const (
	OwnerQuestion OwnerKind = "question"
	OwnerAspect   OwnerKind = "aspect"
	OwnerTemplate OwnerKind = "template"
)

// OwnerRef identifies the versioned entity a rule gates. Rules for all three
// owner kinds live in one store; the kind+id pair replaces runtime type
// discovery.
type OwnerRef struct {
	Kind OwnerKind
	ID   uuid.UUID
}

// Rule is a single visibility condition. SourceField is overloaded: for
// facility-sourced rules it may carry an aggregation prefix (total_, sum_,
// avg_, max_, min_, count_) or a dotted path; for answer-sourced rules it
// holds the referenced question version id, resolved at authoring time.
type Rule struct {
	ID          uuid.UUID
	Owner       OwnerRef
	Source      SourceType
	SourceField string
	Operator    Operator
	Value       string
}
