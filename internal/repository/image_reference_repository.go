package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type imageReferenceRepository struct {
	pool *pgxpool.Pool
}

// NewImageReferenceRepository returns a Postgres-backed implementation.
func NewImageReferenceRepository(pool *pgxpool.Pool) ImageReferenceRepository {
	return &imageReferenceRepository{pool: pool}
}

func (r *imageReferenceRepository) ImageInUse(ctx context.Context, ref string) (bool, error) {
	const query = `
        SELECT EXISTS (SELECT 1 FROM tickets WHERE image = $1)
            OR EXISTS (SELECT 1 FROM news_posts WHERE $1 = ANY(images))`
	var inUse bool
	if err := QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, ref).Scan(&inUse); err != nil {
		return false, mapError(err, "image", ref)
	}
	return inUse, nil
}
