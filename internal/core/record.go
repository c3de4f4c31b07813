package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProjectRecord is a stored import: the tree plus what is known about where
// it came from.
type ProjectRecord struct {
	ID        uuid.UUID
	Name      string
	FileName  string
	CreatedAt time.Time
	Files     int
	Folders   int
	Skipped   int
	Tree      *Project
}

// ProjectSummary is a ProjectRecord without its tree, for listings.
type ProjectSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
	Files     int       `json:"files"`
	Folders   int       `json:"folders"`
	Skipped   int       `json:"skipped"`
}

// Summary drops the tree.
func (r ProjectRecord) Summary() ProjectSummary {
	return ProjectSummary{
		ID:        r.ID,
		Name:      r.Name,
		FileName:  r.FileName,
		CreatedAt: r.CreatedAt,
		Files:     r.Files,
		Folders:   r.Folders,
		Skipped:   r.Skipped,
	}
}

// Repository persists imported projects. Implementations must be safe for
// concurrent use and return ErrProjectNotFound for unknown ids.
type Repository interface {
	Save(ctx context.Context, rec ProjectRecord) error
	Get(ctx context.Context, id uuid.UUID) (ProjectRecord, error)
	List(ctx context.Context) ([]ProjectSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExportSink publishes a finished project somewhere outside the store and
// returns where it went.
type ExportSink interface {
	PutProject(ctx context.Context, key string, p *Project) (string, error)
}
