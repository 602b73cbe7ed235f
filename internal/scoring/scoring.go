// Package scoring computes weighted aspect scores and the overall
// classification for a report. Everything here is pure domain logic: no I/O,
// no side effects. The report service feeds it answer rows joined to their
// question and option definitions and persists whatever comes back.
package scoring

import (
	"math"
	"sort"

	id "vigil/pkg/domain"
)

// AnsweredQuestion is one answer row joined to its question version and
// selected option. OptionScore is nil when the selected option could not be
// resolved against the question's option set.
type AnsweredQuestion struct {
	QuestionVID id.QuestionVersionID
	AspectVID   id.AspectVersionID
	Weight      float64
	Mandatory   bool
	OptionScore *float64
}

// AspectResult is the computed outcome for one aspect of a report.
type AspectResult struct {
	AspectVID id.AspectVersionID
	Score     float64
	Class     id.Classification
}

// Summary is the computed overall outcome for a report.
type Summary struct {
	TotalScore     float64
	Classification id.Classification
	Collectibility id.Collectibility
}

// AspectScores groups answers by aspect version and computes each aspect's
// weighted score: sum of weight/100 * optionScore over the aspect's answered
// questions. Questions hidden by visibility rules simply have no answer row
// and contribute nothing; the remaining weights are not renormalized, which
// means a partially-visible aspect tops out below 100. That is a known
// limitation of the weight model, accepted to keep scores comparable with
// historically stored results.
//
// Each aspect's classification applies the shared score threshold to the
// aspect's own total.
func AspectScores(answers []AnsweredQuestion) []AspectResult {
	totals := make(map[id.AspectVersionID]float64)
	var order []id.AspectVersionID
	for _, answer := range answers {
		if _, seen := totals[answer.AspectVID]; !seen {
			order = append(order, answer.AspectVID)
		}
		if answer.OptionScore == nil {
			continue
		}
		totals[answer.AspectVID] += answer.Weight / 100 * *answer.OptionScore
	}

	results := make([]AspectResult, 0, len(order))
	for _, aspectVID := range order {
		score := round2(totals[aspectVID])
		results = append(results, AspectResult{
			AspectVID: aspectVID,
			Score:     score,
			Class:     classifyScore(score),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AspectVID.String() < results[j].AspectVID.String()
	})
	return results
}

// Overall combines aspect scores with template aspect weights into the final
// summary. weightFor returns the template-version weight for an aspect; an
// aspect absent from the template weighs 0 and silently contributes nothing.
//
// Collectibility is the borrower's self-declared value passed through
// unchanged; it is indicative only.
func Overall(aspects []AspectResult, weightFor func(id.AspectVersionID) float64, answers []AnsweredQuestion, collectibility id.Collectibility) Summary {
	var total float64
	for _, aspect := range aspects {
		total += aspect.Score * weightFor(aspect.AspectVID) / 100
	}
	total = round2(total)

	return Summary{
		TotalScore:     total,
		Classification: Classify(total, aspects, MandatoryFailures(answers)),
		Collectibility: collectibility,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
