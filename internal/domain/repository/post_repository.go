package repository

import (
	"context"

	"github.com/mejova/bloggy/internal/domain/entity"
)

// PostRepository defines the interface for post-related database operations.
// Reads populate Author with the owning user's username.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	List(ctx context.Context) ([]entity.Post, error)
	Latest(ctx context.Context, limit int) ([]entity.Post, error)
	Search(ctx context.Context, query string) ([]entity.Post, error)
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) error
}
