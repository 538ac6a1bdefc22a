package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mejova/bloggy/internal/domain/entity"
	"github.com/mejova/bloggy/internal/domain/repository"
)

const postColumns = `p.id, p.title, p.content, p.tags, p.created_by, u.username, p.created_at, p.updated_at`

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func scanPost(row pgx.Row, p *entity.Post) error {
	return row.Scan(&p.ID, &p.Title, &p.Content, &p.Tags, &p.CreatedBy, &p.Author,
		&p.CreatedAt, &p.UpdatedAt)
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title, content, tags, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Content, p.Tags, p.CreatedBy)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	p := &entity.Post{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.created_by
		WHERE p.id = $1
	`, id)

	if err := scanPost(row, p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) List(ctx context.Context) ([]entity.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.created_by
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) Latest(ctx context.Context, limit int) ([]entity.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.created_by
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) Search(ctx context.Context, query string) ([]entity.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.created_by
		WHERE p.title ILIKE '%' || $1 || '%'
		   OR EXISTS (SELECT 1 FROM unnest(p.tags) t WHERE t ILIKE '%' || $1 || '%')
		ORDER BY p.created_at DESC
	`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	p.UpdatedAt = time.Now()
	if p.Tags == nil {
		p.Tags = []string{}
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET title = $1, content = $2, tags = $3, updated_at = $4
		WHERE id = $5
	`, p.Title, p.Content, p.Tags, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func collectPosts(rows pgx.Rows) ([]entity.Post, error) {
	var posts []entity.Post
	for rows.Next() {
		var p entity.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

var _ repository.PostRepository = (*PostRepository)(nil)
