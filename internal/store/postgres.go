package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"newsbot/internal/post"
)

// PostgresStore writes posts straight into a Postgres "posts" table.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ PostStore = (*PostgresStore)(nil)

// NewPostgresStore connects, pings and ensures the posts schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	slog.Info("postgres store connected")
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category VARCHAR(100),
		source VARCHAR(200),
		original_url TEXT,
		user_id VARCHAR(100) NOT NULL,
		is_bot_post BOOLEAN NOT NULL DEFAULT FALSE,
		image_url TEXT,
		image_alt TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_posts_user_created ON posts(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_posts_original_url ON posts(original_url);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertPost(ctx context.Context, p post.ForumPost) error {
	query := s.builder.
		Insert("posts").
		Columns("title", "content", "category", "source", "original_url", "user_id", "is_bot_post", "image_url", "image_alt", "created_at").
		Values(p.Title, p.Body, p.Category, p.SourceName, p.OriginalURL, p.AuthorID, p.IsBot, nullable(p.ImageURL), nullable(p.ImageAlt), p.CreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentPostTitles(ctx context.Context, authorID string, since time.Time) ([]string, error) {
	query := s.builder.
		Select("title").
		From("posts").
		Where(sq.Eq{"user_id": authorID}).
		Where(sq.Gt{"created_at": since}).
		OrderBy("created_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return titles, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
