package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"docflow/internal/services"
)

// Store manages document state backed by an in-memory SQLite database.
type Store struct {
	db *sql.DB
	// keepalive pins one connection for the Store's lifetime; a shared-cache
	// memory database is destroyed once its last connection closes.
	keepalive *sql.Conn
	dsn       string
}

// Open creates a fresh in-memory document store.
func Open() (*Store, error) {
	dsn := fmt.Sprintf("file:docflow-%s?mode=memory&cache=shared&_txlock=immediate", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	keepalive, err := db.Conn(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pin keepalive connection: %w", err)
	}

	store := &Store{db: db, keepalive: keepalive, dsn: dsn}
	if err := store.initSchema(context.Background()); err != nil {
		_ = keepalive.Close()
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database. All document state is discarded.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.keepalive != nil {
		_ = s.keepalive.Close()
	}
	return s.db.Close()
}

// Create inserts a new document at the ingested status and stamps its first
// timestamp. Duplicate ids are rejected by the primary key.
func (s *Store) Create(ctx context.Context, doc NewDocument) (*Document, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(doc.Name) == "" {
		return nil, services.Wrap(services.ErrValidation, "", "create document", "name is required", nil)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	timestamps := map[string]time.Time{StatusIngested.TimestampKey(): now}
	timestampsJSON, err := json.Marshal(timestamps)
	if err != nil {
		return nil, fmt.Errorf("marshal timestamps: %w", err)
	}

	err = retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(
			ctx,
			`INSERT INTO documents (
                id, name, locator, status, timestamps_json, messages_json, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id,
			doc.Name,
			nullableString(doc.Locator),
			StatusIngested,
			string(timestampsJSON),
			"{}",
			now.Format(time.RFC3339Nano),
			now.Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a document by identifier.
func (s *Store) GetByID(ctx context.Context, id string) (*Document, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "", "get document", fmt.Sprintf("no document with id %s", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns documents filtered by status set (or all documents when no
// status is provided), in insertion order.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Document, error) {
	ctx = ensureContext(ctx)
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + documentColumns + ` FROM documents`
	orderClause := ` ORDER BY rowid`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update merges the patch into the document inside a single transaction and
// returns the updated snapshot. When the patch carries a status the matching
// timestamp entry is stamped. Returns services.ErrNotFound when the id is
// unknown.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*Document, error) {
	ctx = ensureContext(ctx)

	var updated *Document
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck

		row := tx.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
		doc, err := scanDocument(row)
		if errors.Is(err, sql.ErrNoRows) {
			return services.Wrap(services.ErrNotFound, "", "update document", fmt.Sprintf("no document with id %s", id), nil)
		}
		if err != nil {
			return fmt.Errorf("read document for update: %w", err)
		}

		now := time.Now().UTC()
		applyPatch(doc, patch, now)
		doc.UpdatedAt = now

		entitiesJSON, err := marshalNullable(doc.Entities)
		if err != nil {
			return fmt.Errorf("marshal entities: %w", err)
		}
		timestampsJSON, err := json.Marshal(doc.Timestamps)
		if err != nil {
			return fmt.Errorf("marshal timestamps: %w", err)
		}
		messagesJSON, err := json.Marshal(doc.Messages)
		if err != nil {
			return fmt.Errorf("marshal messages: %w", err)
		}

		_, err = tx.ExecContext(
			ctx,
			`UPDATE documents
             SET status = ?, extracted_text = ?, entities_json = ?, document_type = ?,
                 confidence = ?, destination = ?, timestamps_json = ?, messages_json = ?,
                 updated_at = ?
             WHERE id = ?`,
			doc.Status,
			nullableString(doc.ExtractedText),
			entitiesJSON,
			nullableString(doc.DocumentType),
			nullableFloat(doc.Confidence),
			nullableString(doc.Destination),
			string(timestampsJSON),
			string(messagesJSON),
			doc.UpdatedAt.Format(time.RFC3339Nano),
			id,
		)
		if err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyPatch(doc *Document, patch Patch, now time.Time) {
	if patch.ExtractedText != nil {
		doc.ExtractedText = *patch.ExtractedText
	}
	if patch.Entities != nil {
		doc.Entities = patch.Entities
	}
	if patch.DocumentType != nil {
		doc.DocumentType = *patch.DocumentType
	}
	if patch.Confidence != nil {
		confidence := *patch.Confidence
		doc.Confidence = &confidence
	}
	if patch.Destination != nil {
		doc.Destination = *patch.Destination
	}
	if len(patch.Messages) > 0 {
		if doc.Messages == nil {
			doc.Messages = make(map[string]string, len(patch.Messages))
		}
		for stage, message := range patch.Messages {
			doc.Messages[stage] = message
		}
	}
	if patch.Status != nil {
		doc.Status = *patch.Status
		if doc.Timestamps == nil {
			doc.Timestamps = make(map[string]time.Time, 1)
		}
		doc.Timestamps[patch.Status.TimestampKey()] = now
	}
}

// Remove deletes a document by identifier.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	ctx = ensureContext(ctx)
	var removed bool
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = affected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return removed, nil
}

// Clear removes all documents.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	return s.clearWhere(ctx, "", nil)
}

// ClearRouted removes only routed documents.
func (s *Store) ClearRouted(ctx context.Context) (int64, error) {
	return s.clearWhere(ctx, ` WHERE status = ?`, []any{StatusRouted})
}

func (s *Store) clearWhere(ctx context.Context, clause string, args []any) (int64, error) {
	ctx = ensureContext(ctx)
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM documents`+clause, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear documents: %w", err)
	}
	return affected, nil
}

// Stats returns a count of documents grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM documents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("document stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates document counts for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusIngested:
			health.Ingested += count
		case StatusExtracted:
			health.Extracted += count
		case StatusClassified:
			health.Classified += count
		case StatusRouted:
			health.Routed += count
		case StatusHumanIntervention:
			health.Intervention += count
		}
	}
	return health, nil
}

const documentColumns = "id, name, locator, status, extracted_text, entities_json, document_type, confidence, destination, timestamps_json, messages_json, created_at, updated_at"

func scanDocument(scanner interface{ Scan(dest ...any) error }) (*Document, error) {
	var (
		id             string
		name           string
		locator        sql.NullString
		statusStr      string
		extractedText  sql.NullString
		entitiesJSON   sql.NullString
		documentType   sql.NullString
		confidence     sql.NullFloat64
		destination    sql.NullString
		timestampsJSON string
		messagesJSON   string
		createdRaw     string
		updatedRaw     string
	)

	if err := scanner.Scan(
		&id,
		&name,
		&locator,
		&statusStr,
		&extractedText,
		&entitiesJSON,
		&documentType,
		&confidence,
		&destination,
		&timestampsJSON,
		&messagesJSON,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	doc := &Document{
		ID:            id,
		Name:          name,
		Locator:       locator.String,
		Status:        Status(statusStr),
		ExtractedText: extractedText.String,
		DocumentType:  documentType.String,
		Destination:   destination.String,
	}
	if confidence.Valid {
		value := confidence.Float64
		doc.Confidence = &value
	}
	if entitiesJSON.Valid && entitiesJSON.String != "" {
		if err := json.Unmarshal([]byte(entitiesJSON.String), &doc.Entities); err != nil {
			return nil, fmt.Errorf("unmarshal entities: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(timestampsJSON), &doc.Timestamps); err != nil {
		return nil, fmt.Errorf("unmarshal timestamps: %w", err)
	}
	if err := json.Unmarshal([]byte(messagesJSON), &doc.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		doc.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		doc.UpdatedAt = updated
	}
	return doc, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func marshalNullable(value map[string]any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
