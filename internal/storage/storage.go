package storage

import (
	"context"
	"errors"

	"github.com/andriyanb/artikel-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrAlreadyReviewed indicates an article already carries the opposite
// terminal status. Re-applying the same decision is a no-op, not an error.
var ErrAlreadyReviewed = errors.New("article already reviewed")

// UserStore captures persistence operations needed by the auth handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// ArticleStore captures persistence operations needed by the article handlers.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article models.Article) (models.Article, error)
	ListByStatus(ctx context.Context, status string) ([]models.Article, error)
	// SetStatus moves a pending article to the given terminal status.
	// Returns ErrNotFound for an unknown id and ErrAlreadyReviewed when the
	// article already holds the other terminal status.
	SetStatus(ctx context.Context, articleID int64, status string) error
	FindApprovedBySlug(ctx context.Context, slug string) (models.Article, error)
}
