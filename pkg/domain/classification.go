package domain

import dErrors "vigil/pkg/domain-errors"

// Classification is the binary risk outcome of scoring a report or aspect.
type Classification string

const (
	ClassificationSafe      Classification = "SAFE"
	ClassificationWatchlist Classification = "WATCHLIST"
)

var validClassifications = map[Classification]bool{
	ClassificationSafe:      true,
	ClassificationWatchlist: true,
}

// ParseClassification constructs a Classification from external input.
func ParseClassification(s string) (Classification, error) {
	c := Classification(s)
	if !validClassifications[c] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid classification")
	}
	return c, nil
}

func (c Classification) IsValid() bool { return validClassifications[c] }

func (c Classification) String() string { return string(c) }

// Collectibility is the borrower's self-reported collectibility on the
// regulatory 1-5 scale. It is indicative only and never derived from scores.
type Collectibility int

// ParseCollectibility validates the 1-5 range.
func ParseCollectibility(v int) (Collectibility, error) {
	if v < 1 || v > 5 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "collectibility must be between 1 and 5")
	}
	return Collectibility(v), nil
}

func (c Collectibility) Int() int { return int(c) }
