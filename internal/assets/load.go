package assets

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/mtlprog/catprice/internal/domain"
)

// Load returns the tracked assets from repo, falling back to the built-in list when repo
// is nil, empty, or failing. Duplicate ids are dropped, keeping the first occurrence.
func Load(ctx context.Context, repo Repository) []domain.TrackedAsset {
	if repo == nil {
		return domain.DefaultTrackedAssets()
	}

	list, err := repo.List(ctx)
	if err != nil {
		slog.Warn("assets: registry unavailable, using defaults", "error", err)
		return domain.DefaultTrackedAssets()
	}
	if len(list) == 0 {
		slog.Info("assets: registry empty, using defaults")
		return domain.DefaultTrackedAssets()
	}

	return lo.UniqBy(list, func(a domain.TrackedAsset) string { return a.ID.Key() })
}
