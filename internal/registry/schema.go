package registry

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    locator         TEXT,
    status          TEXT NOT NULL,
    extracted_text  TEXT,
    entities_json   TEXT,
    document_type   TEXT,
    confidence      REAL,
    destination     TEXT,
    timestamps_json TEXT NOT NULL,
    messages_json   TEXT NOT NULL,
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents (status);
`

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
