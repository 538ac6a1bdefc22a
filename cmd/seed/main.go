package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/mejova/bloggy/config"
	"github.com/mejova/bloggy/pkg/helpers"
)

// Seeds an admin account and a sample post for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	username := getenv("SEED_ADMIN_USERNAME", "admin")
	password := getenv("SEED_ADMIN_PASSWORD", "changeme1")

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (username, password_hash, is_admin)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (username) DO UPDATE SET is_admin = TRUE
		RETURNING id
	`, username, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s username=%s password=%s\n", id, username, password)

	var postID string
	err = db.QueryRow(`
		INSERT INTO posts (title, content, tags, created_by)
		VALUES ('Hello, world', 'This is the first post.', ARRAY['meta'], $1)
		RETURNING id
	`, id).Scan(&postID)
	if err != nil {
		log.Fatalf("failed to seed post: %v", err)
	}
	fmt.Printf("seeded post: id=%s\n", postID)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
