package scoring

import (
	id "vigil/pkg/domain"
)

// Classification policy constants. The threshold and failure budget are
// fixed business policy, not per-template configuration.
const (
	// SafeThreshold is the minimum total score for a SAFE outcome.
	SafeThreshold = 80.0
	// MandatoryFailureBudget is how many failed mandatory questions a
	// report tolerates before the mandatory rule alone forces WATCHLIST.
	MandatoryFailureBudget = 1
)

// Classify applies the conjunctive classification policy. All three rules
// must hold for SAFE, otherwise WATCHLIST:
//
//  1. Score rule: total >= SafeThreshold.
//  2. Aspect rule: no individual aspect classified WATCHLIST.
//  3. Mandatory rule: mandatory-question failures <= MandatoryFailureBudget.
func Classify(total float64, aspects []AspectResult, mandatoryFailures int) id.Classification {
	if total < SafeThreshold {
		return id.ClassificationWatchlist
	}
	for _, aspect := range aspects {
		if aspect.Class == id.ClassificationWatchlist {
			return id.ClassificationWatchlist
		}
	}
	if mandatoryFailures > MandatoryFailureBudget {
		return id.ClassificationWatchlist
	}
	return id.ClassificationSafe
}

// classifyScore is the shared threshold rule applied to a single aspect's
// total. Aspect-level and report-level classification share this one rule;
// the aspect and mandatory rules only exist at report level.
func classifyScore(score float64) id.Classification {
	if score >= SafeThreshold {
		return id.ClassificationSafe
	}
	return id.ClassificationWatchlist
}

// MandatoryFailures counts mandatory questions whose selected option carries
// a negative score or whose answer could not be resolved to an option.
func MandatoryFailures(answers []AnsweredQuestion) int {
	failures := 0
	for _, answer := range answers {
		if !answer.Mandatory {
			continue
		}
		if answer.OptionScore == nil || *answer.OptionScore < 0 {
			failures++
		}
	}
	return failures
}
