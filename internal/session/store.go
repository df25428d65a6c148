package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one upload session: a document plus its vector store namespace.
type Session struct {
	ID               string    `json:"session_id"`
	DocumentName     string    `json:"document_name"`
	DocumentCategory string    `json:"document_category"`
	DocumentSource   string    `json:"document_source"`
	DocKey           string    `json:"-"`
	Namespace        string    `json:"-"`
	ChunksCount      int       `json:"chunks_count"`
	CreatedAt        time.Time `json:"created_at"`
	LastAccessed     time.Time `json:"last_accessed"`
	Active           bool      `json:"is_active"`
}

// ChatMessage is one question/answer exchange in a session.
type ChatMessage struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Decision  string    `json:"decision"`
	Timestamp time.Time `json:"timestamp"`
}

// Create inserts a new session and returns it.
func (d *DB) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := d.ExecContext(ctx, `
		INSERT INTO sessions (session_id, created_at, last_accessed) VALUES (?, ?, ?)`,
		id, now, now)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{ID: id, CreatedAt: now, LastAccessed: now, Active: true}, nil
}

// Get returns an active session by id, bumping its last-accessed time.
func (d *DB) Get(ctx context.Context, id string) (*Session, error) {
	row := d.QueryRowContext(ctx, `
		SELECT session_id, document_name, document_category, document_source,
		       doc_key, namespace, chunks_count, created_at, last_accessed, is_active
		FROM sessions WHERE session_id = ? AND is_active = 1`, id)

	var s Session
	err := row.Scan(&s.ID, &s.DocumentName, &s.DocumentCategory, &s.DocumentSource,
		&s.DocKey, &s.Namespace, &s.ChunksCount, &s.CreatedAt, &s.LastAccessed, &s.Active)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	_, err = d.ExecContext(ctx, `UPDATE sessions SET last_accessed = ? WHERE session_id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("touching session: %w", err)
	}

	return &s, nil
}

// SetDocument records the outcome of an upload on the session.
func (d *DB) SetDocument(ctx context.Context, id, name, category, source, docKey, namespace string, chunks int) error {
	res, err := d.ExecContext(ctx, `
		UPDATE sessions
		SET document_name = ?, document_category = ?, document_source = ?,
		    doc_key = ?, namespace = ?, chunks_count = ?, last_accessed = ?
		WHERE session_id = ?`,
		name, category, source, docKey, namespace, chunks, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating session document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %q not found", id)
	}
	return nil
}

// AddChat appends one exchange to a session's history.
func (d *DB) AddChat(ctx context.Context, sessionID, question, answer, decisionValue string) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO chat_history (session_id, question, answer, decision, timestamp) VALUES (?, ?, ?, ?, ?)`,
		sessionID, question, answer, decisionValue, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording chat message: %w", err)
	}
	return nil
}

// History returns a session's exchanges in chronological order.
func (d *DB) History(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT question, answer, decision, timestamp
		FROM chat_history WHERE session_id = ? ORDER BY timestamp ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading chat history: %w", err)
	}
	defer rows.Close()

	var history []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.Question, &m.Answer, &m.Decision, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		history = append(history, m)
	}
	return history, rows.Err()
}

// Deactivate soft-deletes a session.
func (d *DB) Deactivate(ctx context.Context, id string) error {
	res, err := d.ExecContext(ctx, `UPDATE sessions SET is_active = 0 WHERE session_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivating session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %q not found", id)
	}
	return nil
}

// List returns all active sessions, most recently accessed first.
func (d *DB) List(ctx context.Context) ([]Session, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT session_id, document_name, document_category, document_source,
		       doc_key, namespace, chunks_count, created_at, last_accessed, is_active
		FROM sessions WHERE is_active = 1 ORDER BY last_accessed DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.DocumentName, &s.DocumentCategory, &s.DocumentSource,
			&s.DocKey, &s.Namespace, &s.ChunksCount, &s.CreatedAt, &s.LastAccessed, &s.Active); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
