package visibility

import (
	id "vigil/pkg/domain"
)

// Context carries the borrower data a rule set is evaluated against.
//
// Facilities holds the borrower's facility records when the caller has a
// list; Facility holds a single record when the upstream source provides one
// flat object. When Facilities is non-nil it takes precedence and facility
// rules go through aggregation-prefix extraction; otherwise fields are read
// from Facility directly.
type Context struct {
	Borrower   map[string]any
	Facility   map[string]any
	Facilities []map[string]any
	Answers    map[id.QuestionVersionID]any
}

// lookupPath resolves a dotted path against nested string-keyed maps.
// A missing segment returns (nil, false).
func lookupPath(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	current := any(data)
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		segment := path[start:i]
		start = i + 1

		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
