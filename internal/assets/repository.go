// Package assets stores the list of CATs the price pipeline tracks.
package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/catprice/internal/domain"
)

// Repository defines persistent storage for tracked assets.
type Repository interface {
	List(ctx context.Context) ([]domain.TrackedAsset, error)
	Upsert(ctx context.Context, asset domain.TrackedAsset) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL tracked-asset repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) List(ctx context.Context) ([]domain.TrackedAsset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT asset_id, name FROM tracked_assets ORDER BY created_at, asset_id`)
	if err != nil {
		return nil, fmt.Errorf("listing tracked assets: %w", err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TrackedAsset, error) {
		var (
			id   string
			name string
		)
		if err := row.Scan(&id, &name); err != nil {
			return domain.TrackedAsset{}, err
		}
		return domain.TrackedAsset{ID: domain.AssetID(id), Name: name}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning tracked assets: %w", err)
	}
	return list, nil
}

func (r *PgRepository) Upsert(ctx context.Context, asset domain.TrackedAsset) error {
	id := asset.ID.Key()
	if id == "" {
		return errors.New("upserting tracked asset: empty asset id")
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tracked_assets (asset_id, name)
		 VALUES ($1, $2)
		 ON CONFLICT (asset_id)
		 DO UPDATE SET name = EXCLUDED.name`,
		id, strings.TrimSpace(asset.Name))
	if err != nil {
		return fmt.Errorf("upserting tracked asset %s: %w", id, err)
	}
	return nil
}
