package visibility

import (
	"fmt"
	"strconv"
	"strings"

	id "vigil/pkg/domain"
)

// Visible evaluates the conjunction of all rules attached to one entity.
// An empty rule set imposes no restriction and is always visible; otherwise
// every rule must pass, short-circuiting on the first failure.
func Visible(rules []Rule, evalCtx Context) bool {
	for _, rule := range rules {
		if !Evaluate(rule, evalCtx) {
			return false
		}
	}
	return true
}

// Evaluate applies a single rule against the borrower context.
//
// Unknown is treated as false throughout: an absent source value, a
// non-numeric operand under an ordering operator, or an operator the
// evaluator does not recognize all fail closed rather than erroring, so one
// malformed rule cannot take down a whole scoring pass. The one exception is
// "!=" against an absent value, which passes when the comparison value is
// itself non-null.
func Evaluate(rule Rule, evalCtx Context) bool {
	source, found := resolveSource(rule, evalCtx)
	if !found || source == nil {
		return rule.Operator == OpNotEqual && !isNullLiteral(rule.Value)
	}

	switch rule.Operator {
	case OpEqual:
		return looseEqual(source, rule.Value)
	case OpNotEqual:
		return !looseEqual(source, rule.Value)
	case OpGreater, OpLess, OpGreaterOrEqual, OpLessOrEqual:
		return compareNumeric(source, rule.Value, rule.Operator)
	case OpIn:
		return inList(source, rule.Value)
	case OpNotIn:
		return !inList(source, rule.Value)
	case OpContains:
		return containsString(source, rule.Value)
	case OpNotContains:
		str, ok := source.(string)
		if !ok {
			return false
		}
		return !strings.Contains(strings.ToLower(str), strings.ToLower(rule.Value))
	default:
		return false
	}
}

func resolveSource(rule Rule, evalCtx Context) (any, bool) {
	switch rule.Source {
	case SourceBorrowerDetail:
		return lookupPath(evalCtx.Borrower, rule.SourceField)
	case SourceBorrowerFacility:
		if evalCtx.Facilities != nil {
			return extractFacilityField(evalCtx.Facilities, rule.SourceField)
		}
		return lookupPath(evalCtx.Facility, rule.SourceField)
	case SourceAnswer:
		qvID, err := id.ParseQuestionVersionID(rule.SourceField)
		if err != nil {
			return nil, false
		}
		value, ok := evalCtx.Answers[qvID]
		return value, ok
	default:
		return nil, false
	}
}

// extractFacilityField resolves a field against a facility list using the
// aggregation-prefix convention on the field name.
//
// total_/sum_ sum the field across all facilities and count_ reports bare
// presence (1 when the field is non-empty on any facility, else 0). The
// avg_/max_/min_ prefixes are accepted but apply no reduction: they strip
// the prefix and read the field from the first facility. Rule data in
// production depends on that exact behavior, so it is kept verbatim; the
// divergence from the prefix names is pinned by tests.
func extractFacilityField(facilities []map[string]any, field string) (any, bool) {
	switch {
	case strings.HasPrefix(field, "total_"), strings.HasPrefix(field, "sum_"):
		name := strings.TrimPrefix(strings.TrimPrefix(field, "total_"), "sum_")
		return sumField(facilities, name)
	case strings.HasPrefix(field, "avg_"):
		return firstField(facilities, strings.TrimPrefix(field, "avg_"))
	case strings.HasPrefix(field, "max_"):
		return firstField(facilities, strings.TrimPrefix(field, "max_"))
	case strings.HasPrefix(field, "min_"):
		return firstField(facilities, strings.TrimPrefix(field, "min_"))
	case strings.HasPrefix(field, "count_"):
		name := strings.TrimPrefix(field, "count_")
		for _, facility := range facilities {
			if value, ok := facility[name]; ok && !isEmpty(value) {
				return 1, true
			}
		}
		return 0, true
	case strings.Contains(field, "."):
		if len(facilities) == 0 {
			return nil, false
		}
		return lookupPath(facilities[0], field)
	default:
		return firstField(facilities, field)
	}
}

func sumField(facilities []map[string]any, name string) (any, bool) {
	var sum float64
	found := false
	for _, facility := range facilities {
		value, ok := facility[name]
		if !ok {
			continue
		}
		if n, ok := toFloat(value); ok {
			sum += n
			found = true
		}
	}
	if !found {
		return nil, false
	}
	return sum, true
}

func firstField(facilities []map[string]any, name string) (any, bool) {
	if len(facilities) == 0 {
		return nil, false
	}
	value, ok := facilities[0][name]
	return value, ok
}

// looseEqual compares numerically when both operands parse as numbers and
// falls back to string comparison otherwise, matching how rule values are
// authored (everything arrives as a string).
func looseEqual(source any, value string) bool {
	if sn, ok := toFloat(source); ok {
		if vn, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return sn == vn
		}
	}
	return stringify(source) == value
}

func compareNumeric(source any, value string, op Operator) bool {
	sn, ok := toFloat(source)
	if !ok {
		return false
	}
	vn, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	switch op {
	case OpGreater:
		return sn > vn
	case OpLess:
		return sn < vn
	case OpGreaterOrEqual:
		return sn >= vn
	case OpLessOrEqual:
		return sn <= vn
	default:
		return false
	}
}

// inList splits the rule value on commas, trims each token, and checks the
// stringified source against the tokens.
func inList(source any, value string) bool {
	needle := strings.TrimSpace(stringify(source))
	for _, token := range strings.Split(value, ",") {
		if strings.TrimSpace(token) == needle {
			return true
		}
	}
	return false
}

func containsString(source any, value string) bool {
	str, ok := source.(string)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(str), strings.ToLower(value))
}

func isNullLiteral(value string) bool {
	return value == "" || strings.EqualFold(value, "null")
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	if f, ok := toFloat(value); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%v", value)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
