// Package domain holds shared identifier and value types used across modules.
//
// IDs are distinct uuid-backed types so that a BorrowerID can never be passed
// where a ReportID is expected. Construct them via the Parse* functions at
// trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "vigil/pkg/domain-errors"
)

type (
	// BorrowerID identifies a monitored borrower.
	BorrowerID uuid.UUID
	// ReportID identifies one borrower+period+template submission.
	ReportID uuid.UUID
	// TemplateID identifies a scoring template across its versions.
	TemplateID uuid.UUID
	// TemplateVersionID identifies one immutable template snapshot.
	TemplateVersionID uuid.UUID
	// AspectID identifies a risk aspect across its versions.
	AspectID uuid.UUID
	// AspectVersionID identifies one immutable aspect snapshot.
	AspectVersionID uuid.UUID
	// QuestionVersionID identifies a question within an aspect version.
	QuestionVersionID uuid.UUID
	// QuestionOptionID identifies a selectable answer option.
	QuestionOptionID uuid.UUID
	// AnswerID identifies a submitted answer row.
	AnswerID uuid.UUID
	// WatchlistID identifies a borrower watchlist record.
	WatchlistID uuid.UUID
	// NoteID identifies a monitoring note on a watchlist.
	NoteID uuid.UUID
	// ActionItemID identifies a follow-up item under a monitoring note.
	ActionItemID uuid.UUID
	// UserID identifies an acting user (relationship manager, analyst, ...).
	UserID uuid.UUID
)

// parseUUID enforces the shared ID invariant: valid, non-nil UUID.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

func ParseBorrowerID(s string) (BorrowerID, error) {
	u, err := parseUUID(s)
	return BorrowerID(u), err
}

func ParseReportID(s string) (ReportID, error) {
	u, err := parseUUID(s)
	return ReportID(u), err
}

func ParseTemplateID(s string) (TemplateID, error) {
	u, err := parseUUID(s)
	return TemplateID(u), err
}

func ParseTemplateVersionID(s string) (TemplateVersionID, error) {
	u, err := parseUUID(s)
	return TemplateVersionID(u), err
}

func ParseAspectID(s string) (AspectID, error) {
	u, err := parseUUID(s)
	return AspectID(u), err
}

func ParseAspectVersionID(s string) (AspectVersionID, error) {
	u, err := parseUUID(s)
	return AspectVersionID(u), err
}

func ParseQuestionVersionID(s string) (QuestionVersionID, error) {
	u, err := parseUUID(s)
	return QuestionVersionID(u), err
}

func ParseQuestionOptionID(s string) (QuestionOptionID, error) {
	u, err := parseUUID(s)
	return QuestionOptionID(u), err
}

func ParseWatchlistID(s string) (WatchlistID, error) {
	u, err := parseUUID(s)
	return WatchlistID(u), err
}

func ParseNoteID(s string) (NoteID, error) {
	u, err := parseUUID(s)
	return NoteID(u), err
}

func ParseActionItemID(s string) (ActionItemID, error) {
	u, err := parseUUID(s)
	return ActionItemID(u), err
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

func (id BorrowerID) String() string        { return uuid.UUID(id).String() }
func (id ReportID) String() string          { return uuid.UUID(id).String() }
func (id TemplateID) String() string        { return uuid.UUID(id).String() }
func (id TemplateVersionID) String() string { return uuid.UUID(id).String() }
func (id AspectID) String() string          { return uuid.UUID(id).String() }
func (id AspectVersionID) String() string   { return uuid.UUID(id).String() }
func (id QuestionVersionID) String() string { return uuid.UUID(id).String() }
func (id QuestionOptionID) String() string  { return uuid.UUID(id).String() }
func (id AnswerID) String() string          { return uuid.UUID(id).String() }
func (id WatchlistID) String() string       { return uuid.UUID(id).String() }
func (id NoteID) String() string            { return uuid.UUID(id).String() }
func (id ActionItemID) String() string      { return uuid.UUID(id).String() }
func (id UserID) String() string            { return uuid.UUID(id).String() }

func (id BorrowerID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ReportID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id TemplateID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id TemplateVersionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AspectID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id AspectVersionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id QuestionVersionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id QuestionOptionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id AnswerID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id WatchlistID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool            { return uuid.UUID(id) == uuid.Nil }
