package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vigil/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	reportID := ReportID(uuid.New())
	borrowerID := BorrowerID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ ReportID = borrowerID   // compile error
	// var _ BorrowerID = reportID   // compile error

	// Verify they're distinct at runtime too
	assert.NotEqual(t, uuid.UUID(reportID), uuid.UUID(borrowerID))
}

// TestParseID_SecurityInvariants validates security-critical parsing rules.
// Parsing must reject attack vectors at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Attack vectors
		{"SQL injection attempt", "'; DROP TABLE reports;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400​-e29b-41d4-a716-446655440000", true},

		// Edge cases
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		// Note: uuid.Parse trims whitespace, so " uuid " is accepted as valid

		// Valid
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReportID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures all ID types have identical
// parsing behavior. Inconsistent validation across ID types could create
// security holes.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	parsers := map[string]func(string) error{
		"BorrowerID":        func(s string) error { _, err := ParseBorrowerID(s); return err },
		"ReportID":          func(s string) error { _, err := ParseReportID(s); return err },
		"TemplateID":        func(s string) error { _, err := ParseTemplateID(s); return err },
		"TemplateVersionID": func(s string) error { _, err := ParseTemplateVersionID(s); return err },
		"AspectID":          func(s string) error { _, err := ParseAspectID(s); return err },
		"AspectVersionID":   func(s string) error { _, err := ParseAspectVersionID(s); return err },
		"QuestionVersionID": func(s string) error { _, err := ParseQuestionVersionID(s); return err },
		"QuestionOptionID":  func(s string) error { _, err := ParseQuestionOptionID(s); return err },
		"WatchlistID":       func(s string) error { _, err := ParseWatchlistID(s); return err },
		"NoteID":            func(s string) error { _, err := ParseNoteID(s); return err },
		"ActionItemID":      func(s string) error { _, err := ParseActionItemID(s); return err },
		"UserID":            func(s string) error { _, err := ParseUserID(s); return err },
	}

	t.Run("all accept valid UUID", func(t *testing.T) {
		for name, parse := range parsers {
			require.NoError(t, parse(validUUID), name)
		}
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			for name, parse := range parsers {
				require.Error(t, parse(input), name)
			}
		})
	}
}
