// Package models defines monitoring reports and their computed results.
package models

import (
	"time"

	id "vigil/pkg/domain"
)

// Status is the report lifecycle. A rejected report re-enters the approval
// chain through resubmission; a final report is immutable.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusRejected  Status = "REJECTED"
	StatusFinal     Status = "FINAL"
)

// Report is one borrower monitoring report for a period, scored against a
// pinned template version. Revising the template never touches existing
// reports; they keep the version they were created with.
type Report struct {
	ID         id.ReportID
	BorrowerID id.BorrowerID
	Period     string
	TemplateV  id.TemplateVersionID
	Status     Status
	CreatedBy  id.UserID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Answer is the selected option for one question version. At most one row
// exists per (report, question version); re-answering replaces it.
type Answer struct {
	ID         id.AnswerID
	ReportID   id.ReportID
	QuestionV  id.QuestionVersionID
	OptionID   id.QuestionOptionID
	AnsweredBy id.UserID
	AnsweredAt time.Time
}

// AspectResult is the stored per-aspect outcome of a recalculation, upserted
// per (report, aspect version).
type AspectResult struct {
	ReportID       id.ReportID
	AspectV        id.AspectVersionID
	Score          float64
	Classification id.Classification
	ComputedAt     time.Time
}

// Summary is the stored overall outcome, one row per report. Override, when
// set, replaces the computed classification for downstream consumers without
// touching the computed fields; OverrideReason is mandatory alongside it.
type Summary struct {
	ReportID       id.ReportID
	TotalScore     float64
	Classification id.Classification
	Collectibility id.Collectibility
	Override       *id.Classification
	OverrideReason string
	OverriddenBy   *id.UserID
	Notes          string
	ComputedAt     time.Time
}

// FinalClassification returns the override when present, otherwise the
// computed classification.
func (s *Summary) FinalClassification() id.Classification {
	if s.Override != nil {
		return *s.Override
	}
	return s.Classification
}
