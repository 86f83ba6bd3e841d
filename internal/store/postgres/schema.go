package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction; IF NOT EXISTS keeps re-runs idempotent.
	ddl := `
CREATE TABLE IF NOT EXISTS folders (
    id         UUID PRIMARY KEY,
    kind       TEXT NOT NULL,
    name       TEXT NOT NULL,
    created_at TIMESTAMPTZ DEFAULT now(),
    CONSTRAINT uq_folder_kind_name UNIQUE (kind, name)
);

CREATE TABLE IF NOT EXISTS entities (
    id          UUID PRIMARY KEY,
    kind        TEXT NOT NULL,
    name        TEXT NOT NULL,
    folder_id   TEXT NOT NULL DEFAULT '',
    source_kind TEXT NOT NULL DEFAULT '',
    source_id   TEXT NOT NULL DEFAULT '',
    data        JSONB NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ DEFAULT now(),
    updated_at  TIMESTAMPTZ DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities (kind);
CREATE INDEX IF NOT EXISTS idx_entities_folder ON entities (folder_id);
CREATE INDEX IF NOT EXISTS idx_entities_kind_folder ON entities (kind, folder_id);
CREATE INDEX IF NOT EXISTS idx_entities_source ON entities (source_kind, source_id);
CREATE INDEX IF NOT EXISTS idx_entities_data ON entities USING GIN (data jsonb_path_ops);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
