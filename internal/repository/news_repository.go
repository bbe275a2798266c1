package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const newsColumns = "id, title, content, images, created_by, author_name, created_at, updated_at"

type newsRepository struct {
	pool *pgxpool.Pool
}

// NewNewsRepository builds repository.
func NewNewsRepository(pool *pgxpool.Pool) NewsRepository {
	return &newsRepository{pool: pool}
}

func (r *newsRepository) Create(ctx context.Context, post *domain.NewsPost) error {
	const query = `
        INSERT INTO news_posts (id, title, content, images, created_by, author_name, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	images := post.Images
	if images == nil {
		images = []string{}
	}
	_, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, query,
		post.ID, post.Title, post.Content, images, post.CreatedBy, post.AuthorName, post.CreatedAt)
	return mapError(err, "news post", post.ID)
}

func (r *newsRepository) Update(ctx context.Context, post *domain.NewsPost) error {
	images := post.Images
	if images == nil {
		images = []string{}
	}
	tag, err := QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`UPDATE news_posts SET title=$1, content=$2, images=$3, updated_at=$4 WHERE id=$5`,
		post.Title, post.Content, images, post.UpdatedAt, post.ID)
	if err != nil {
		return mapError(err, "news post", post.ID)
	}
	return expectOne(tag, "news post", post.ID)
}

func (r *newsRepository) GetByID(ctx context.Context, id string) (*domain.NewsPost, error) {
	return r.fetch(ctx, `SELECT `+newsColumns+` FROM news_posts WHERE id=$1`, id)
}

func (r *newsRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.NewsPost, error) {
	return r.fetch(ctx, `SELECT `+newsColumns+` FROM news_posts WHERE id=$1 FOR UPDATE`, id)
}

func (r *newsRepository) fetch(ctx context.Context, query, id string) (*domain.NewsPost, error) {
	post, err := scanNews(QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "news post", id)
	}
	return post, nil
}

func (r *newsRepository) Delete(ctx context.Context, id string) error {
	tag, err := QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM news_posts WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "news post", id)
	}
	return expectOne(tag, "news post", id)
}

func (r *newsRepository) List(ctx context.Context, limit, offset int) ([]domain.NewsPost, error) {
	limit, offset = NormalizePage(limit, offset)
	query, args, err := psql.Select(newsColumns).From("news_posts").
		OrderBy("created_at DESC", "pk DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "news", "list")
	}
	defer rows.Close()

	var result []domain.NewsPost
	for rows.Next() {
		post, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *post)
	}
	return result, rows.Err()
}

func scanNews(row pgx.Row) (*domain.NewsPost, error) {
	var post domain.NewsPost
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Images,
		&post.CreatedBy,
		&post.AuthorName,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}
