// Package admin provides administrative operations on the project store.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/csvtree/internal/core"
)

// ResetTimeout is the maximum duration for store reset operations.
const ResetTimeout = 30 * time.Second

// ResetAll deletes every stored project and returns how many were removed.
// This is a destructive operation - use with caution.
func ResetAll(ctx context.Context, repo core.Repository) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	list, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}

	removed := 0
	for _, p := range list {
		if err := repo.Delete(ctx, p.ID); err != nil {
			return removed, fmt.Errorf("delete project %s: %w", p.ID, err)
		}
		removed++
	}
	return removed, nil
}
