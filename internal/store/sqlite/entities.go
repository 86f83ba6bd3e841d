package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"encounterport/internal/store"
	"encounterport/internal/target"
)

func (c *Client) EnsureFolder(ctx context.Context, kind target.Kind, name string) (string, error) {
	query := `
	INSERT INTO folders (id, kind, name)
	VALUES (?, ?, ?)
	ON CONFLICT (kind, name) DO NOTHING
	`
	if _, err := c.db.ExecContext(ctx, query, uuid.NewString(), string(kind), name); err != nil {
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
	err := c.db.QueryRowContext(ctx,
		`SELECT id, kind, name FROM folders WHERE kind = ? AND name = ?`,
		string(kind), name,
	).Scan(&f.ID, &k, &f.Name)
	if errors.Is(err, sql.ErrNoRows) {
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
	id := uuid.NewString()

	query := `
	INSERT INTO entities (id, kind, name, folder_id, source_kind, source_id, data)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = c.db.ExecContext(ctx, query,
		id,
		string(cols.Kind),
		cols.Name,
		cols.Folder,
		cols.SourceKind,
		cols.SourceID,
		string(data),
	)
	if err != nil {
		return "", fmt.Errorf("creating %s %q: %w", cols.Kind, cols.Name, err)
	}
	return id, nil
}

func (c *Client) Update(ctx context.Context, id string, e target.Entity) error {
	cols, data, err := store.Columns(e)
	if err != nil {
		return err
	}

	query := `
	UPDATE entities SET
		name = ?,
		folder_id = ?,
		source_kind = ?,
		source_id = ?,
		data = ?,
		updated_at = datetime('now')
	WHERE id = ? AND kind = ?
	`
	res, err := c.db.ExecContext(ctx, query,
		cols.Name,
		cols.Folder,
		cols.SourceKind,
		cols.SourceID,
		string(data),
		id,
		string(cols.Kind),
	)
	if err != nil {
		return fmt.Errorf("updating entity %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating entity %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("entity %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (c *Client) GetEntity(ctx context.Context, id string) (*store.Entity, error) {
	query := `
	SELECT id, kind, name, folder_id, source_kind, source_id, data
	FROM entities
	WHERE id = ?
	`

	e, err := scanEntity(c.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity: %w", err)
	}
	return e, nil
}

func (c *Client) ListEntities(ctx context.Context, f store.Filter) ([]store.EntitySummary, error) {
	query := `
	SELECT id, kind, name, folder_id, source_kind, source_id
	FROM entities
	WHERE (? = '' OR kind = ?)
	  AND (? = '' OR folder_id = ?)
	ORDER BY kind, name, id
	`

	rows, err := c.db.QueryContext(ctx, query, string(f.Kind), string(f.Kind), f.Folder, f.Folder)
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
	SELECT id, kind, name, folder_id, source_kind, source_id, data
	FROM entities
	WHERE (? = '' OR kind = ?)
	  AND (? = '' OR folder_id = ?)
	ORDER BY kind, name, id
	`

	rows, err := c.db.QueryContext(ctx, query, string(f.Kind), string(f.Kind), f.Folder, f.Folder)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (*store.Entity, error) {
	var e store.Entity
	var kind, data string
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
	e.Data = []byte(data)
	return &e, nil
}
