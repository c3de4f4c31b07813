package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	file_name TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	files INTEGER NOT NULL DEFAULT 0,
	folders INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	path_separator TEXT NOT NULL DEFAULT '/',
	tree JSON NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);
`

// SQLite stores each project as one row holding its cc.json tree.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database file at path.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection: writes are serialized and ":memory:" databases stay shared.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		sqliteSchema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite %s: %w", path, err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, rec core.ProjectRecord) error {
	tree, err := encodeTree(rec.Tree)
	if err != nil {
		return fmt.Errorf("save project %s: %w", rec.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO projects (id, name, file_name, created_at, files, folders, skipped, path_separator, tree)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name,
	file_name = excluded.file_name,
	created_at = excluded.created_at,
	files = excluded.files,
	folders = excluded.folders,
	skipped = excluded.skipped,
	path_separator = excluded.path_separator,
	tree = excluded.tree`,
		rec.ID.String(), rec.Name, rec.FileName, rec.CreatedAt.UnixNano(),
		rec.Files, rec.Folders, rec.Skipped,
		separatorString(rec.Tree.PathSeparator()), string(tree),
	)
	if err != nil {
		return fmt.Errorf("save project %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id uuid.UUID) (core.ProjectRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT name, file_name, created_at, files, folders, skipped, path_separator, tree
FROM projects WHERE id = ?`, id.String())

	var (
		rec     = core.ProjectRecord{ID: id}
		created int64
		sep     string
		tree    string
	)
	err := row.Scan(&rec.Name, &rec.FileName, &created, &rec.Files, &rec.Folders, &rec.Skipped, &sep, &tree)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ProjectRecord{}, ErrNotFound
	}
	if err != nil {
		return core.ProjectRecord{}, fmt.Errorf("get project %s: %w", id, err)
	}

	rec.CreatedAt = time.Unix(0, created).UTC()
	if rec.Tree, err = decodeTree([]byte(tree), separatorRune(sep)); err != nil {
		return core.ProjectRecord{}, fmt.Errorf("get project %s: %w", id, err)
	}
	return rec, nil
}

// List returns summaries newest first.
func (s *SQLite) List(ctx context.Context) ([]core.ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, file_name, created_at, files, folders, skipped
FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []core.ProjectSummary{}
	for rows.Next() {
		var (
			sum     core.ProjectSummary
			id      string
			created int64
		)
		if err := rows.Scan(&id, &sum.Name, &sum.FileName, &created, &sum.Files, &sum.Folders, &sum.Skipped); err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		if sum.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("list projects: bad id %q: %w", id, err)
		}
		sum.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (s *SQLite) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
