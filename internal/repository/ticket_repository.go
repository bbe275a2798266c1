package repository

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const ticketColumns = "id, title, content, image, priority, status, created_by, assigned_to, shared_with, created_at, updated_at"

// shareRow is the JSONB shape of a sharing entry.
type shareRow struct {
	Email string           `json:"email"`
	Role  domain.ShareRole `json:"role"`
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, content, image, priority, status, created_by, assigned_to, shared_with, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	shared, err := encodeShares(ticket.SharedWith)
	if err != nil {
		return err
	}
	_, err = QuerierFromCtx(ctx, r.pool).Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Content,
		ticket.Image,
		ticket.Priority,
		ticket.Status,
		ticket.CreatedBy,
		ticket.AssignedTo,
		shared,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	return mapError(err, "ticket", ticket.ID)
}

// Update writes every mutable column. created_by is never updated.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, content=$2, image=$3, priority=$4, status=$5,
            assigned_to=$6, shared_with=$7, updated_at=$8
        WHERE id=$9`
	shared, err := encodeShares(ticket.SharedWith)
	if err != nil {
		return err
	}
	tag, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, query,
		ticket.Title,
		ticket.Content,
		ticket.Image,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedTo,
		shared,
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return mapError(err, "ticket", ticket.ID)
	}
	return expectOne(tag, "ticket", ticket.ID)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetch(ctx, id, false)
}

// GetByIDForUpdate takes a row lock. Outside a transaction the lock is
// released as soon as the statement finishes.
func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetch(ctx, id, true)
}

func (r *ticketRepository) fetch(ctx context.Context, id string, lock bool) (*domain.Ticket, error) {
	builder := psql.Select(ticketColumns).From("tickets").Where(sq.Eq{"id": id})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	ticket, err := scanTicket(QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "ticket", id)
	}
	return ticket, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	tag, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "ticket", id)
	}
	return expectOne(tag, "ticket", id)
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	limit, offset := NormalizePage(filter.Limit, filter.Offset)
	builder := psql.Select(ticketColumns).From("tickets").
		OrderBy("created_at DESC", "pk DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if filter.CreatedBy != nil {
		builder = builder.Where(sq.Eq{"created_by": *filter.CreatedBy})
	}
	if filter.AssignedTo != nil {
		builder = builder.Where(sq.Eq{"assigned_to": *filter.AssignedTo})
	}
	if filter.SharedWith != nil {
		needle, err := json.Marshal([]map[string]string{{"email": domain.NormalizeEmail(*filter.SharedWith)}})
		if err != nil {
			return nil, err
		}
		builder = builder.Where(sq.Expr("shared_with @> ?::jsonb", string(needle)))
	}
	if term := NormalizeSearch(filter.Search); term != "" {
		pattern := LikePattern(term)
		builder = builder.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"content": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "tickets", "list")
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket domain.Ticket
		shared []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Content,
		&ticket.Image,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&shared,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	entries, err := decodeShares(shared)
	if err != nil {
		return nil, err
	}
	ticket.SharedWith = entries
	return &ticket, nil
}

func encodeShares(entries []domain.ShareEntry) (string, error) {
	rows := make([]shareRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, shareRow{Email: domain.NormalizeEmail(entry.Email), Role: entry.Role})
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeShares(raw []byte) ([]domain.ShareEntry, error) {
	if len(raw) == 0 {
		return []domain.ShareEntry{}, nil
	}
	var rows []shareRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	entries := make([]domain.ShareEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.ShareEntry{Email: row.Email, Role: row.Role})
	}
	return entries, nil
}
