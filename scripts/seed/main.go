// Command seed provisions the initial dashboard accounts. It is idempotent:
// existing usernames are left untouched.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-agenda-api/internal/models"
	"github.com/noah-isme/sma-agenda-api/pkg/config"
	"github.com/noah-isme/sma-agenda-api/pkg/database"
)

type seedUser struct {
	username string
	password string
	fullName string
	role     models.UserRole
}

func main() {
	var (
		adminPassword string
		userPassword  string
	)
	flag.StringVar(&adminPassword, "admin-password", "", "Password for the admin account (required)")
	flag.StringVar(&userPassword, "user-password", "", "Password for the regular account (required)")
	flag.Parse()

	if adminPassword == "" || userPassword == "" {
		log.Fatal("both -admin-password and -user-password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	users := []seedUser{
		{username: "admin", password: adminPassword, fullName: "Administrator", role: models.RoleAdmin},
		{username: "guru", password: userPassword, fullName: "Guru", role: models.RoleUser},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, u := range users {
		inserted, err := insertUser(ctx, db, u)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.username, err)
		}
		if inserted {
			log.Printf("created user %s (%s)", u.username, u.role)
		} else {
			log.Printf("user %s already exists, skipped", u.username)
		}
	}
}

func insertUser(ctx context.Context, db *sqlx.DB, u seedUser) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	const query = `INSERT INTO users (id, username, password_hash, full_name, role, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
ON CONFLICT (username) DO NOTHING`
	result, err := db.ExecContext(ctx, query, uuid.NewString(), u.username, string(hash), u.fullName, u.role, now)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
