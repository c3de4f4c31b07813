package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JonMunkholm/csvtree/internal/config"
	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/JonMunkholm/csvtree/internal/export"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS csvtree_projects (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	file_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	files INTEGER NOT NULL DEFAULT 0,
	folders INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	path_separator TEXT NOT NULL DEFAULT '/'
)`,
	`CREATE TABLE IF NOT EXISTS csvtree_nodes (
	project_id UUID NOT NULL REFERENCES csvtree_projects(id) ON DELETE CASCADE,
	node_id INTEGER NOT NULL,
	parent_id INTEGER,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	attributes JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (project_id, node_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_csvtree_projects_created_at ON csvtree_projects (created_at DESC)`,
}

var nodeColumns = []string{"project_id", "node_id", "parent_id", "name", "kind", "attributes"}

// Postgres stores one row per project and one row per node. Node ids are
// assigned in pre-order, so ordering by node_id rebuilds every folder's
// children in their original order.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool using cfg and prepares the schema.
func OpenPostgres(ctx context.Context, cfg config.StoreConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s, err := NewPostgres(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres uses an existing pool. Close closes the pool.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Save(ctx context.Context, rec core.ProjectRecord) error {
	if rec.Tree == nil {
		return fmt.Errorf("save project %s: project has no tree", rec.ID)
	}
	pgID := pgtype.UUID{Bytes: rec.ID, Valid: true}

	rows, err := nodeRows(pgID, rec.Tree)
	if err != nil {
		return fmt.Errorf("save project %s: %w", rec.ID, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO csvtree_projects (id, name, file_name, created_at, files, folders, skipped, path_separator)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	file_name = EXCLUDED.file_name,
	created_at = EXCLUDED.created_at,
	files = EXCLUDED.files,
	folders = EXCLUDED.folders,
	skipped = EXCLUDED.skipped,
	path_separator = EXCLUDED.path_separator`,
		pgID, rec.Name, rec.FileName, rec.CreatedAt,
		rec.Files, rec.Folders, rec.Skipped, separatorString(rec.Tree.PathSeparator()),
	)
	if err != nil {
		return fmt.Errorf("save project %s: %w", rec.ID, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM csvtree_nodes WHERE project_id = $1", pgID); err != nil {
		return fmt.Errorf("clear nodes %s: %w", rec.ID, err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"csvtree_nodes"}, nodeColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy nodes %s: %w", rec.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit project %s: %w", rec.ID, err)
	}
	return nil
}

// nodeRows flattens the tree in pre-order, root first with a NULL parent.
func nodeRows(projectID pgtype.UUID, p *core.Project) ([][]any, error) {
	var (
		rows [][]any
		err  error
	)
	var visit func(n core.Node, parent pgtype.Int4)
	visit = func(n core.Node, parent pgtype.Int4) {
		if err != nil {
			return
		}
		id := int32(len(rows))
		attrs := []byte("{}")
		if f, ok := n.(*core.File); ok && len(f.Attributes) > 0 {
			if attrs, err = json.Marshal(f.Attributes); err != nil {
				return
			}
		}
		rows = append(rows, []any{projectID, id, parent, n.NodeName(), string(n.Type()), attrs})

		if dir, ok := n.(*core.Folder); ok {
			for _, c := range dir.Children {
				visit(c, pgtype.Int4{Int32: id, Valid: true})
			}
		}
	}
	visit(p.Root(), pgtype.Int4{})
	return rows, err
}

func (s *Postgres) Get(ctx context.Context, id uuid.UUID) (core.ProjectRecord, error) {
	pgID := pgtype.UUID{Bytes: id, Valid: true}
	rec := core.ProjectRecord{ID: id}

	var sep string
	err := s.pool.QueryRow(ctx, `
SELECT name, file_name, created_at, files, folders, skipped, path_separator
FROM csvtree_projects WHERE id = $1`, pgID).
		Scan(&rec.Name, &rec.FileName, &rec.CreatedAt, &rec.Files, &rec.Folders, &rec.Skipped, &sep)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ProjectRecord{}, ErrNotFound
	}
	if err != nil {
		return core.ProjectRecord{}, fmt.Errorf("get project %s: %w", id, err)
	}

	rows, err := s.pool.Query(ctx, `
SELECT node_id, parent_id, name, kind, attributes
FROM csvtree_nodes WHERE project_id = $1 ORDER BY node_id`, pgID)
	if err != nil {
		return core.ProjectRecord{}, fmt.Errorf("get nodes %s: %w", id, err)
	}
	defer rows.Close()

	var root *core.Folder
	folders := make(map[int32]*core.Folder)
	for rows.Next() {
		var (
			nodeID int32
			parent pgtype.Int4
			name   string
			kind   string
			raw    []byte
		)
		if err := rows.Scan(&nodeID, &parent, &name, &kind, &raw); err != nil {
			return core.ProjectRecord{}, fmt.Errorf("scan node: %w", err)
		}

		var n core.Node
		switch core.NodeType(kind) {
		case core.NodeFolder:
			f := core.NewFolder(name)
			folders[nodeID] = f
			n = f
		case core.NodeFile:
			var attrs export.Attributes
			if err := json.Unmarshal(raw, &attrs); err != nil {
				return core.ProjectRecord{}, fmt.Errorf("node %d attributes: %w", nodeID, err)
			}
			n = core.NewFile(name, core.Attributes(attrs))
		default:
			return core.ProjectRecord{}, fmt.Errorf("node %d: unknown kind %q", nodeID, kind)
		}

		if !parent.Valid {
			f, ok := n.(*core.Folder)
			if !ok || root != nil {
				return core.ProjectRecord{}, fmt.Errorf("project %s: invalid root node %d", id, nodeID)
			}
			root = f
			continue
		}
		dir, ok := folders[parent.Int32]
		if !ok {
			return core.ProjectRecord{}, fmt.Errorf("node %d: parent %d is not a folder", nodeID, parent.Int32)
		}
		dir.Children = append(dir.Children, n)
	}
	if err := rows.Err(); err != nil {
		return core.ProjectRecord{}, fmt.Errorf("get nodes %s: %w", id, err)
	}

	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.Tree = core.FromRoot(rec.Name, root, separatorRune(sep))
	return rec, nil
}

// List returns summaries newest first.
func (s *Postgres) List(ctx context.Context) ([]core.ProjectSummary, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, name, file_name, created_at, files, folders, skipped
FROM csvtree_projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []core.ProjectSummary{}
	for rows.Next() {
		var (
			sum  core.ProjectSummary
			pgID pgtype.UUID
		)
		if err := rows.Scan(&pgID, &sum.Name, &sum.FileName, &sum.CreatedAt, &sum.Files, &sum.Folders, &sum.Skipped); err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		sum.ID = uuid.UUID(pgID.Bytes)
		sum.CreatedAt = sum.CreatedAt.UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM csvtree_projects WHERE id = $1", pgtype.UUID{Bytes: id, Valid: true})
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
