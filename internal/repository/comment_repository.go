package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const commentColumns = "id, ticket_id, content, created_by, author_name, parent_id, created_at, updated_at"

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (id, ticket_id, content, created_by, author_name, parent_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, query,
		comment.ID,
		comment.TicketID,
		comment.Content,
		comment.CreatedBy,
		comment.AuthorName,
		comment.ParentID,
		comment.CreatedAt,
	)
	return mapError(err, "comment", comment.ID)
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	tag, err := QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`UPDATE comments SET content=$1, updated_at=$2 WHERE id=$3`,
		comment.Content, comment.UpdatedAt, comment.ID)
	if err != nil {
		return mapError(err, "comment", comment.ID)
	}
	return expectOne(tag, "comment", comment.ID)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	query, args, err := psql.Select(commentColumns).From("comments").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	comment, err := scanComment(QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "comment", id)
	}
	return comment, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	query, args, err := psql.Select(commentColumns).From("comments").
		Where(sq.Eq{"ticket_id": ticketID}).
		OrderBy("created_at ASC", "pk ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "comments of ticket", ticketID)
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := psql.Delete("comments").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return err
	}
	_, err = QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	return mapError(err, "comments", ids[0])
}

func (r *commentRepository) DeleteByTicket(ctx context.Context, ticketID string) error {
	_, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM comments WHERE ticket_id=$1`, ticketID)
	return mapError(err, "comments of ticket", ticketID)
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.Content,
		&comment.CreatedBy,
		&comment.AuthorName,
		&comment.ParentID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}
