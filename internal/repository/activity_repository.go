package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository builds repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	const query = `
        INSERT INTO activities (id, type, message, user_id, ticket_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, query,
		activity.ID,
		activity.Type,
		activity.Message,
		activity.UserID,
		activity.TicketID,
		activity.CreatedAt,
	)
	return mapError(err, "activity", activity.ID)
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Activity, error) {
	limit, offset = NormalizePage(limit, offset)
	query, args, err := psql.
		Select("id, type, message, user_id, ticket_id, created_at").
		From("activities").
		Where("user_id = ?", userID).
		OrderBy("created_at DESC", "pk DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "activities of user", userID)
	}
	defer rows.Close()

	var result []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.Type,
			&activity.Message,
			&activity.UserID,
			&activity.TicketID,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}
