package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const userColumns = "id, email, display_name, is_admin, organization, password_hash, ticket_ids, created_at, updated_at"

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, email, display_name, is_admin, organization, password_hash, ticket_ids, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	ticketIDs := user.TicketIDs
	if ticketIDs == nil {
		ticketIDs = []string{}
	}
	_, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, query,
		user.ID,
		domain.NormalizeEmail(user.Email),
		user.DisplayName,
		user.IsAdmin,
		user.Organization,
		user.PasswordHash,
		ticketIDs,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return mapError(err, "user", user.ID)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET display_name=$1, is_admin=$2, organization=$3, password_hash=$4, updated_at=$5
        WHERE id=$6`

	tag, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, query,
		user.DisplayName,
		user.IsAdmin,
		user.Organization,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return mapError(err, "user", user.ID)
	}
	return expectOne(tag, "user", user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, "id", id, false)
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, "id", id, true)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, "email", domain.NormalizeEmail(email), false)
}

func (r *userRepository) fetchSingle(ctx context.Context, column, value string, lock bool) (*domain.User, error) {
	builder := psql.Select(userColumns).From("users").Where(sq.Eq{column: value})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	user, err := scanUser(QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "user", value)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	limit, offset := NormalizePage(filter.Limit, filter.Offset)
	builder := psql.Select(userColumns).From("users").
		OrderBy("created_at DESC", "pk DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if term := NormalizeSearch(filter.Search); term != "" {
		pattern := LikePattern(term)
		builder = builder.Where(sq.Or{
			sq.ILike{"email": pattern},
			sq.ILike{"display_name": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "users", "list")
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) AddTicket(ctx context.Context, userID, ticketID string) error {
	const query = `
        UPDATE users SET ticket_ids = array_append(array_remove(ticket_ids, $1), $1)
        WHERE id=$2`
	tag, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, query, ticketID, userID)
	if err != nil {
		return mapError(err, "user", userID)
	}
	return expectOne(tag, "user", userID)
}

func (r *userRepository) RemoveTicket(ctx context.Context, userID, ticketID string) error {
	const query = `UPDATE users SET ticket_ids = array_remove(ticket_ids, $1) WHERE id=$2`
	tag, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, query, ticketID, userID)
	if err != nil {
		return mapError(err, "user", userID)
	}
	return expectOne(tag, "user", userID)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.IsAdmin,
		&user.Organization,
		&user.PasswordHash,
		&user.TicketIDs,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
