package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andriyanb/artikel-be/internal/models"
	"github.com/andriyanb/artikel-be/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore    = (*Store)(nil)
	_ storage.ArticleStore = (*Store)(nil)
)

// Store provides Postgres-backed persistence for users and articles.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS articles (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			description TEXT NOT NULL,
			image_url TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS articles_status_idx ON articles (status);`,
		`CREATE INDEX IF NOT EXISTS articles_slug_idx ON articles (slug);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (username, email, phone, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, email, phone, role, password_hash, created_at;
	`
	row := s.pool.QueryRow(ctx, query, user.Username, user.Email, user.Phone, user.Role, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
		SELECT id, username, email, phone, role, password_hash, created_at
		FROM users
		WHERE username = $1;
	`
	row := s.pool.QueryRow(ctx, query, username)
	return scanUser(row)
}

// CreateArticle inserts a new pending article row.
func (s *Store) CreateArticle(ctx context.Context, article models.Article) (models.Article, error) {
	const query = `
		INSERT INTO articles (user_id, title, slug, description, image_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, title, slug, description, image_url, status, created_at;
	`
	row := s.pool.QueryRow(ctx, query, article.UserID, article.Title, article.Slug, article.Description, article.ImageURL, article.Status)
	return scanArticle(row)
}

// ListByStatus fetches all articles holding the given status, newest first.
func (s *Store) ListByStatus(ctx context.Context, status string) ([]models.Article, error) {
	const query = `
		SELECT id, user_id, title, slug, description, image_url, status, created_at
		FROM articles
		WHERE status = $1
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := s.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]models.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// SetStatus applies a review decision. The update only fires for pending
// rows; a miss is disambiguated by re-reading the current status.
func (s *Store) SetStatus(ctx context.Context, articleID int64, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE articles SET status = $2 WHERE id = $1 AND status = 'pending';`,
		articleID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = s.pool.QueryRow(ctx, `SELECT status FROM articles WHERE id = $1;`, articleID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return err
	}
	if current == status {
		return nil
	}
	return storage.ErrAlreadyReviewed
}

// FindApprovedBySlug fetches the approved article matching slug. Under a
// slug collision the most recently created article wins.
func (s *Store) FindApprovedBySlug(ctx context.Context, slug string) (models.Article, error) {
	const query = `
		SELECT id, user_id, title, slug, description, image_url, status, created_at
		FROM articles
		WHERE slug = $1 AND status = 'approved'
		ORDER BY created_at DESC, id DESC
		LIMIT 1;
	`
	row := s.pool.QueryRow(ctx, query, slug)
	return scanArticle(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.Role, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func scanArticle(row pgx.Row) (models.Article, error) {
	var article models.Article
	if err := row.Scan(&article.ID, &article.UserID, &article.Title, &article.Slug, &article.Description, &article.ImageURL, &article.Status, &article.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Article{}, storage.ErrNotFound
		}
		return models.Article{}, err
	}
	return article, nil
}
