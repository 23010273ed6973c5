package main

// migrate sets up the threadhub schema and seed data on a fresh Postgres.
// The API server also auto-migrates on boot; this command exists for
// provisioning a database before the server ever runs, and for seeding the
// demo boards and post used in development.

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_login TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id TEXT PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		revoked BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
	`CREATE TABLE IF NOT EXISTS boards (
		id BIGSERIAL PRIMARY KEY,
		category TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		allow_anonymous BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id BIGSERIAL PRIMARY KEY,
		board_id BIGINT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		body TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_board_id ON posts(board_id)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		parent_id BIGINT REFERENCES comments(id),
		user_id UUID REFERENCES users(id) ON DELETE SET NULL,
		is_guest BOOLEAN NOT NULL DEFAULT false,
		guest_nickname TEXT,
		guest_password_hash TEXT,
		content TEXT NOT NULL,
		like_count INTEGER NOT NULL DEFAULT 0,
		is_deleted BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_parent_id ON comments(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments(user_id)`,
	`CREATE TABLE IF NOT EXISTS comment_likes (
		id BIGSERIAL PRIMARY KEY,
		comment_id BIGINT NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_comment_user ON comment_likes(comment_id, user_id)`,
}

var seed = []string{
	`INSERT INTO boards (category, name, allow_anonymous)
	 VALUES ('general', 'General Discussion', true)
	 ON CONFLICT (category) DO NOTHING`,
	`INSERT INTO boards (category, name, allow_anonymous)
	 VALUES ('announcements', 'Announcements', false)
	 ON CONFLICT (category) DO NOTHING`,
}

func main() {
	withSeed := flag.Bool("seed", false, "insert the default boards after migrating")
	flag.Parse()

	// .env is optional here, real environments set DATABASE_URL directly
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	defer conn.Close(ctx)

	for _, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
	fmt.Println("✓ Schema is up to date.")

	if *withSeed {
		for _, stmt := range seed {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				log.Fatalf("seeding failed: %v", err)
			}
		}
		fmt.Println("✓ Default boards seeded.")
	}
}
