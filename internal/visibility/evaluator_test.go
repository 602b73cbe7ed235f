package visibility

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vigil/pkg/domain"
)

func borrowerRule(field string, op Operator, value string) Rule {
	return Rule{
		ID:          uuid.New(),
		Owner:       OwnerRef{Kind: OwnerQuestion, ID: uuid.New()},
		Source:      SourceBorrowerDetail,
		SourceField: field,
		Operator:    op,
		Value:       value,
	}
}

func facilityRule(field string, op Operator, value string) Rule {
	r := borrowerRule(field, op, value)
	r.Source = SourceBorrowerFacility
	return r
}

func TestEvaluate_Operators(t *testing.T) {
	evalCtx := Context{
		Borrower: map[string]any{
			"economic_sector": "manufacturing",
			"collectibility":  2,
			"restructuring":   "true",
			"profile": map[string]any{
				"segment": "corporate",
			},
		},
	}

	t.Run("equality is loose across numeric representations", func(t *testing.T) {
		assert.True(t, Evaluate(borrowerRule("collectibility", OpEqual, "2"), evalCtx))
		assert.True(t, Evaluate(borrowerRule("collectibility", OpEqual, "2.0"), evalCtx))
		assert.False(t, Evaluate(borrowerRule("collectibility", OpEqual, "3"), evalCtx))
	})

	t.Run("not equal", func(t *testing.T) {
		assert.True(t, Evaluate(borrowerRule("economic_sector", OpNotEqual, "mining"), evalCtx))
		assert.False(t, Evaluate(borrowerRule("economic_sector", OpNotEqual, "manufacturing"), evalCtx))
	})

	t.Run("ordering requires numeric operands", func(t *testing.T) {
		assert.True(t, Evaluate(borrowerRule("collectibility", OpGreaterOrEqual, "2"), evalCtx))
		assert.False(t, Evaluate(borrowerRule("collectibility", OpGreater, "2"), evalCtx))
		// Non-numeric source fails closed, never panics.
		assert.False(t, Evaluate(borrowerRule("economic_sector", OpGreater, "1"), evalCtx))
		// Non-numeric comparison value fails closed too.
		assert.False(t, Evaluate(borrowerRule("collectibility", OpLess, "many"), evalCtx))
	})

	t.Run("in matches trimmed comma tokens", func(t *testing.T) {
		rule := borrowerRule("economic_sector", OpIn, "trade, manufacturing ,services")
		assert.True(t, Evaluate(rule, evalCtx))

		rule.Value = "trade,mining"
		assert.False(t, Evaluate(rule, evalCtx))
	})

	t.Run("not_in rejects listed values", func(t *testing.T) {
		assert.False(t, Evaluate(borrowerRule("economic_sector", OpNotIn, "manufacturing"), evalCtx))
		assert.True(t, Evaluate(borrowerRule("economic_sector", OpNotIn, "mining,trade"), evalCtx))
	})

	t.Run("contains is case-insensitive and string-only", func(t *testing.T) {
		assert.True(t, Evaluate(borrowerRule("economic_sector", OpContains, "FACT"), evalCtx))
		assert.False(t, Evaluate(borrowerRule("economic_sector", OpContains, "oil"), evalCtx))
		// Numeric source is not a string: fail closed.
		assert.False(t, Evaluate(borrowerRule("collectibility", OpContains, "2"), evalCtx))
	})

	t.Run("not_contains", func(t *testing.T) {
		assert.True(t, Evaluate(borrowerRule("economic_sector", OpNotContains, "oil"), evalCtx))
		assert.False(t, Evaluate(borrowerRule("economic_sector", OpNotContains, "MANU"), evalCtx))
	})

	t.Run("dotted path resolves nested borrower fields", func(t *testing.T) {
		assert.True(t, Evaluate(borrowerRule("profile.segment", OpEqual, "corporate"), evalCtx))
		assert.False(t, Evaluate(borrowerRule("profile.missing", OpEqual, "corporate"), evalCtx))
	})

	t.Run("unknown operator fails closed", func(t *testing.T) {
		assert.False(t, Evaluate(borrowerRule("economic_sector", Operator("matches"), "x"), evalCtx))
	})
}

func TestEvaluate_NullSource(t *testing.T) {
	evalCtx := Context{Borrower: map[string]any{"purpose": "expansion"}}

	t.Run("absent field passes only for != with non-null value", func(t *testing.T) {
		assert.True(t, Evaluate(borrowerRule("missing_field", OpNotEqual, "anything"), evalCtx))
		assert.False(t, Evaluate(borrowerRule("missing_field", OpNotEqual, ""), evalCtx))
		assert.False(t, Evaluate(borrowerRule("missing_field", OpNotEqual, "null"), evalCtx))
	})

	t.Run("every other operator fails closed on absent field", func(t *testing.T) {
		for _, op := range []Operator{OpEqual, OpGreater, OpLess, OpGreaterOrEqual, OpLessOrEqual, OpIn, OpNotIn, OpContains, OpNotContains} {
			assert.False(t, Evaluate(borrowerRule("missing_field", op, "x"), evalCtx), "operator %s", op)
		}
	})
}

func TestEvaluate_FacilityAggregation(t *testing.T) {
	evalCtx := Context{
		Facilities: []map[string]any{
			{"facility_name": "WC-1", "outstanding": 400.0, "pdo_days": 10, "interest_rate": 9.5, "collateral": map[string]any{"type": "land"}},
			{"facility_name": "WC-2", "outstanding": 600.0, "pdo_days": 0, "interest_rate": 10.5},
			{"facility_name": "INV-1", "outstanding": 0.0, "principal_arrears": 25.0},
		},
	}

	t.Run("total_ and sum_ sum across facilities", func(t *testing.T) {
		assert.True(t, Evaluate(facilityRule("total_outstanding", OpEqual, "1000"), evalCtx))
		assert.True(t, Evaluate(facilityRule("sum_outstanding", OpGreaterOrEqual, "1000"), evalCtx))
		assert.True(t, Evaluate(facilityRule("sum_principal_arrears", OpEqual, "25"), evalCtx))
	})

	t.Run("count_ reports bare presence, not a record count", func(t *testing.T) {
		// Three facilities carry pdo_days, yet the result is 1: presence only.
		assert.True(t, Evaluate(facilityRule("count_pdo_days", OpEqual, "1"), evalCtx))
		assert.True(t, Evaluate(facilityRule("count_maturity_date", OpEqual, "0"), evalCtx))
	})

	t.Run("avg_ applies no division despite its name", func(t *testing.T) {
		// The prefix suggests (9.5+10.5)/2 = 10, but extraction reads the
		// first facility's field without reducing. Rule data in production
		// relies on this, so the behavior is pinned rather than corrected.
		assert.True(t, Evaluate(facilityRule("avg_interest_rate", OpEqual, "9.5"), evalCtx))
		assert.False(t, Evaluate(facilityRule("avg_interest_rate", OpEqual, "10"), evalCtx))
	})

	t.Run("max_ and min_ apply no reduction despite their names", func(t *testing.T) {
		// Same quirk as avg_: first facility's value, not max/min over the list.
		assert.True(t, Evaluate(facilityRule("max_pdo_days", OpEqual, "10"), evalCtx))
		assert.True(t, Evaluate(facilityRule("min_pdo_days", OpEqual, "10"), evalCtx))
	})

	t.Run("dotted path reads nested fields of the first facility", func(t *testing.T) {
		assert.True(t, Evaluate(facilityRule("collateral.type", OpEqual, "land"), evalCtx))
	})

	t.Run("bare field reads the first facility", func(t *testing.T) {
		assert.True(t, Evaluate(facilityRule("facility_name", OpEqual, "WC-1"), evalCtx))
	})

	t.Run("single facility record skips aggregation", func(t *testing.T) {
		single := Context{Facility: map[string]any{"outstanding": 500.0}}
		assert.True(t, Evaluate(facilityRule("outstanding", OpEqual, "500"), single))
		// Aggregation prefixes are not interpreted for a singular record.
		assert.False(t, Evaluate(facilityRule("total_outstanding", OpEqual, "500"), single))
	})
}

func TestEvaluate_AnswerSource(t *testing.T) {
	qvID := id.QuestionVersionID(uuid.New())
	evalCtx := Context{
		Answers: map[id.QuestionVersionID]any{qvID: "yes"},
	}

	rule := Rule{
		Source:      SourceAnswer,
		SourceField: qvID.String(),
		Operator:    OpEqual,
		Value:       "yes",
	}

	t.Run("resolved question id reads the prior answer", func(t *testing.T) {
		assert.True(t, Evaluate(rule, evalCtx))
	})

	t.Run("unanswered question fails closed", func(t *testing.T) {
		missing := rule
		missing.SourceField = uuid.New().String()
		assert.False(t, Evaluate(missing, evalCtx))
	})

	t.Run("unparseable reference fails closed", func(t *testing.T) {
		malformed := rule
		malformed.SourceField = "question-3"
		assert.False(t, Evaluate(malformed, evalCtx))
	})
}

func TestVisible(t *testing.T) {
	evalCtx := Context{Borrower: map[string]any{"borrower_group": "SME", "collectibility": 1}}

	t.Run("empty rule set is always visible", func(t *testing.T) {
		assert.True(t, Visible(nil, evalCtx))
		assert.True(t, Visible([]Rule{}, evalCtx))
	})

	t.Run("all rules must pass", func(t *testing.T) {
		rules := []Rule{
			borrowerRule("borrower_group", OpEqual, "SME"),
			borrowerRule("collectibility", OpLessOrEqual, "2"),
		}
		require.True(t, Visible(rules, evalCtx))

		rules = append(rules, borrowerRule("borrower_group", OpEqual, "corporate"))
		assert.False(t, Visible(rules, evalCtx))
	})
}
