// Package postgres implements the audit store with a transactional outbox.
// Entries are written to the outbox table inside the caller's transaction
// and relayed to Kafka by the outbox relay; the audit topic is the durable
// record consumed by compliance tooling.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vigil/internal/audit"
	id "vigil/pkg/domain"
	txcontext "vigil/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// payload is the JSON structure relayed to Kafka.
type payload struct {
	ID          string         `json:"id"`
	Timestamp   string         `json:"timestamp"`
	SubjectType string         `json:"subject_type"`
	SubjectID   string         `json:"subject_id"`
	Action      string         `json:"action"`
	ActorID     string         `json:"actor_id,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Append writes one outbox row. Joining the ambient transaction is what
// makes audit entries atomic with the state change they record.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	body := payload{
		ID:          event.ID.String(),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		SubjectType: event.SubjectType,
		SubjectID:   event.SubjectID,
		Action:      string(event.Action),
		RequestID:   event.RequestID,
		Metadata:    event.Metadata,
	}
	if !event.ActorID.IsNil() {
		body.ActorID = event.ActorID.String()
	}

	payloadBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO audit_outbox (id, subject_type, subject_id, action, actor_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, event.ID, event.SubjectType, event.SubjectID, string(event.Action), nullableActor(event.ActorID), payloadBytes, event.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit outbox: %w", err)
	}
	return nil
}

func nullableActor(actorID id.UserID) any {
	if actorID.IsNil() {
		return nil
	}
	return uuid.UUID(actorID)
}

func (s *Store) ListBySubject(ctx context.Context, subjectType, subjectID string) ([]audit.Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT payload FROM audit_outbox
		WHERE subject_type = $1 AND subject_id = $2
		ORDER BY created_at ASC
	`, subjectType, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event, err := decodePayload(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func decodePayload(raw []byte) (audit.Event, error) {
	var body payload
	if err := json.Unmarshal(raw, &body); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit payload: %w", err)
	}

	event := audit.Event{
		SubjectType: body.SubjectType,
		SubjectID:   body.SubjectID,
		Action:      audit.Action(body.Action),
		RequestID:   body.RequestID,
		Metadata:    body.Metadata,
	}
	if parsed, err := uuid.Parse(body.ID); err == nil {
		event.ID = parsed
	}
	if ts, err := time.Parse(time.RFC3339Nano, body.Timestamp); err == nil {
		event.Timestamp = ts
	}
	if body.ActorID != "" {
		if actor, err := id.ParseUserID(body.ActorID); err == nil {
			event.ActorID = actor
		}
	}
	return event, nil
}

// PendingBatch returns up to limit unpublished outbox rows, oldest first.
func (s *Store) PendingBatch(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("load pending audit outbox: %w", err)
	}
	defer rows.Close()

	var batch []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		batch = append(batch, row)
	}
	return batch, rows.Err()
}

// MarkPublished stamps outbox rows as relayed so they are never re-sent.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, publishedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	for _, rowID := range ids {
		_, err := s.db.ExecContext(ctx, `
			UPDATE audit_outbox SET published_at = $2 WHERE id = $1
		`, rowID, publishedAt)
		if err != nil {
			return fmt.Errorf("mark outbox published: %w", err)
		}
	}
	return nil
}

// OutboxRow is one relayable outbox entry.
type OutboxRow struct {
	ID      uuid.UUID
	Payload []byte
}
