// Package models defines the watchlist lifecycle and its monitoring
// artifacts. A watchlist is derived state: scoring outcomes create and
// archive records, never user CRUD.
package models

import (
	"time"

	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// Status is the watchlist lifecycle state. At most one ACTIVE record may
// exist per borrower at any time.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusResolved Status = "RESOLVED"
	StatusArchived Status = "ARCHIVED"
)

// Watchlist tracks ongoing risk monitoring for one borrower.
type Watchlist struct {
	ID           id.WatchlistID
	BorrowerID   id.BorrowerID
	Status       Status
	SourceReport id.ReportID
	CreatedAt    time.Time
	ResolvedBy   *id.UserID
	ResolvedAt   *time.Time
}

// ItemCategory buckets an action item by period relation.
type ItemCategory string

const (
	CategoryPreviousPeriod  ItemCategory = "previous_period"
	CategoryCurrentProgress ItemCategory = "current_progress"
	CategoryNextPeriod      ItemCategory = "next_period"
)

var validCategories = map[ItemCategory]bool{
	CategoryPreviousPeriod:  true,
	CategoryCurrentProgress: true,
	CategoryNextPeriod:      true,
}

func ParseItemCategory(s string) (ItemCategory, error) {
	c := ItemCategory(s)
	if !validCategories[c] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid action item category")
	}
	return c, nil
}

// ItemStatus is the action item lifecycle: PENDING -> IN_PROGRESS ->
// COMPLETED or OVERDUE.
type ItemStatus string

const (
	ItemPending    ItemStatus = "PENDING"
	ItemInProgress ItemStatus = "IN_PROGRESS"
	ItemCompleted  ItemStatus = "COMPLETED"
	ItemOverdue    ItemStatus = "OVERDUE"
)

// allowedTransitions encodes the forward-only lifecycle. OVERDUE items may
// still move forward once addressed.
var allowedTransitions = map[ItemStatus][]ItemStatus{
	ItemPending:    {ItemInProgress, ItemOverdue},
	ItemInProgress: {ItemCompleted, ItemOverdue},
	ItemOverdue:    {ItemInProgress, ItemCompleted},
}

// ParseItemStatus constructs an ItemStatus from external input.
func ParseItemStatus(s string) (ItemStatus, error) {
	status := ItemStatus(s)
	if _, ok := allowedTransitions[status]; !ok && status != ItemCompleted {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid action item status")
	}
	return status, nil
}

// CanTransition reports whether moving from -> to is a legal lifecycle step.
func CanTransition(from, to ItemStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Resolved reports whether the item needs no carry-forward.
func (s ItemStatus) Resolved() bool {
	return s == ItemCompleted
}

// MonitoringNote is a per-period narrative attached to an active watchlist.
type MonitoringNote struct {
	ID          id.NoteID
	WatchlistID id.WatchlistID
	Period      string
	Body        string
	CreatedBy   id.UserID
	CreatedAt   time.Time
}

// ActionItem is a tracked follow-up under a monitoring note.
type ActionItem struct {
	ID          id.ActionItemID
	NoteID      id.NoteID
	Category    ItemCategory
	Description string
	Status      ItemStatus
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
