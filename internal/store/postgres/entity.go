package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"encounterport/internal/store"
	"encounterport/internal/target"
)

func (c *Client) EnsureFolder(ctx context.Context, kind target.Kind, name string) (string, error) {
	query := `
INSERT INTO folders (id, kind, name)
VALUES ($1, $2, $3)
ON CONFLICT (kind, name) DO NOTHING
`
	if _, err := c.pool.Exec(ctx, query, uuid.New(), string(kind), name); err != nil {
		return "", fmt.Errorf("ensuring folder %q: %w", name, err)
	}

	f, err := c.FindFolder(ctx, kind, name)
	if err != nil {
		return "", err
	}
	return f.ID, nil
}

func (c *Client) FindFolder(ctx context.Context, kind target.Kind, name string) (*store.Folder, error) {
	var f store.Folder
	var k string
	err := c.pool.QueryRow(ctx,
		`SELECT id::text, kind, name FROM folders WHERE kind = $1 AND name = $2`,
		string(kind), name,
	).Scan(&f.ID, &k, &f.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("folder %q: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding folder: %w", err)
	}
	f.Kind = target.Kind(k)
	return &f, nil
}

func (c *Client) Create(ctx context.Context, e target.Entity) (string, error) {
	cols, data, err := store.Columns(e)
	if err != nil {
		return "", err
	}
	id := uuid.New()

	query := `
INSERT INTO entities (id, kind, name, folder_id, source_kind, source_id, data)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err = c.pool.Exec(ctx, query,
		id,
		string(cols.Kind),
		cols.Name,
		cols.Folder,
		cols.SourceKind,
		cols.SourceID,
		data,
	)
	if err != nil {
		return "", fmt.Errorf("creating %s %q: %w", cols.Kind, cols.Name, err)
	}
	return id.String(), nil
}

func (c *Client) Update(ctx context.Context, id string, e target.Entity) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("entity %s: %w", id, store.ErrNotFound)
	}
	cols, data, err := store.Columns(e)
	if err != nil {
		return err
	}

	query := `
UPDATE entities SET
    name = $2,
    folder_id = $3,
    source_kind = $4,
    source_id = $5,
    data = $6,
    updated_at = now()
WHERE id = $1 AND kind = $7
`
	tag, err := c.pool.Exec(ctx, query,
		uid,
		cols.Name,
		cols.Folder,
		cols.SourceKind,
		cols.SourceID,
		data,
		string(cols.Kind),
	)
	if err != nil {
		return fmt.Errorf("updating entity %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entity %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (c *Client) GetEntity(ctx context.Context, id string) (*store.Entity, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", id, store.ErrNotFound)
	}

	query := `
SELECT id::text, kind, name, folder_id, source_kind, source_id, data
FROM entities
WHERE id = $1
`
	e, err := scanEntity(c.pool.QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("entity %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity: %w", err)
	}
	return e, nil
}

func (c *Client) ListEntities(ctx context.Context, f store.Filter) ([]store.EntitySummary, error) {
	query := `
SELECT id::text, kind, name, folder_id, source_kind, source_id
FROM entities
WHERE ($1 = '' OR kind = $1)
  AND ($2 = '' OR folder_id = $2)
ORDER BY kind, name, id
`
	rows, err := c.pool.Query(ctx, query, string(f.Kind), f.Folder)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	summaries := []store.EntitySummary{}
	for rows.Next() {
		var s store.EntitySummary
		var kind string
		if err := rows.Scan(&s.ID, &kind, &s.Name, &s.Folder, &s.SourceKind, &s.SourceID); err != nil {
			return nil, fmt.Errorf("scanning entity summary: %w", err)
		}
		s.Kind = target.Kind(kind)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entity summaries: %w", err)
	}
	return summaries, nil
}

func (c *Client) ListEntitiesWithData(ctx context.Context, f store.Filter) ([]store.Entity, error) {
	query := `
SELECT id::text, kind, name, folder_id, source_kind, source_id, data
FROM entities
WHERE ($1 = '' OR kind = $1)
  AND ($2 = '' OR folder_id = $2)
ORDER BY kind, name, id
`
	rows, err := c.pool.Query(ctx, query, string(f.Kind), f.Folder)
	if err != nil {
		return nil, fmt.Errorf("listing entities with data: %w", err)
	}
	defer rows.Close()

	entities := []store.Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		entities = append(entities, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return entities, nil
}

func scanEntity(row pgx.Row) (*store.Entity, error) {
	var e store.Entity
	var kind string
	var data []byte
	err := row.Scan(
		&e.ID,
		&kind,
		&e.Name,
		&e.Folder,
		&e.SourceKind,
		&e.SourceID,
		&data,
	)
	if err != nil {
		return nil, err
	}
	e.Kind = target.Kind(kind)
	e.Data = data
	return &e, nil
}
