package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Repository bundles both database views. Photos is built on the privileged
// credential and bypasses row-level access rules; PublicPhotos is built on
// the unprivileged one and can only read. Which pool a repository gets is the
// capability switch: tests substitute fakes per instance, nothing is global.
type Repository struct {
	adminPool  *pgxpool.Pool
	publicPool *pgxpool.Pool

	Photos       PhotoRepository
	PublicPhotos PhotoReader
}

func NewRepository(ctx context.Context, adminDSN, publicDSN string) (*Repository, error) {
	adminPool, err := pgxpool.Connect(ctx, adminDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	publicPool := adminPool
	if publicDSN != adminDSN {
		publicPool, err = pgxpool.Connect(ctx, publicDSN)
		if err != nil {
			adminPool.Close()
			return nil, fmt.Errorf("failed to connect to database with public credentials: %w", err)
		}
	}

	return &Repository{
		adminPool:    adminPool,
		publicPool:   publicPool,
		Photos:       NewPhotoRepository(adminPool),
		PublicPhotos: NewPhotoRepository(publicPool),
	}, nil
}

func (r *Repository) Close() {
	if r.publicPool != r.adminPool {
		r.publicPool.Close()
	}
	r.adminPool.Close()
}
