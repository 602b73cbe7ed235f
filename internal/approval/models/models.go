// Package models defines the report approval chain. Every report passes
// four levels in fixed order; a rejection at any level blocks the rest until
// the chain is reset on resubmission.
package models

import (
	"time"

	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// Level is one approval stage. Chain order is fixed.
type Level string

const (
	LevelRM           Level = "RM"
	LevelRiskAnalyst  Level = "RISK_ANALYST"
	LevelKadeptBisnis Level = "KADEPT_BISNIS"
	LevelKadivERO     Level = "KADIV_ERO"
)

// Chain lists the levels in decision order.
var Chain = []Level{LevelRM, LevelRiskAnalyst, LevelKadeptBisnis, LevelKadivERO}

// Index returns the level's position in the chain, or -1.
func (l Level) Index() int {
	for i, level := range Chain {
		if level == l {
			return i
		}
	}
	return -1
}

func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if l.Index() < 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid approval level")
	}
	return l, nil
}

// Status is one level's decision state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Approval is one level's row in a report's chain. Exactly one row exists
// per (report, level) once the chain is started.
type Approval struct {
	ReportID  id.ReportID
	Level     Level
	Status    Status
	DecidedBy *id.UserID
	DecidedAt *time.Time
	Comment   string
}
