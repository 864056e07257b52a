package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"civicaid.org/internal/auth"
	"civicaid.org/internal/ids"
	"civicaid.org/internal/migrate"
)

func main() {
	log.SetFlags(0)
	var (
		dsn            = flag.String("dsn", os.Getenv("CIVICAID_PG_DSN"), "PostgreSQL DSN")
		migrationsPath = flag.String("migrations", "migrations", "Path to SQL migrations")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or CIVICAID_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|status|seed-admin]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	mgr := migrate.NewManager(db, *migrationsPath)

	switch flag.Arg(0) {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	case "seed-admin":
		err = seedAdmin(ctx, db)
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}

// seedAdmin creates the first ADMIN account out of band. Registration can
// never produce an ADMIN, so a fresh deployment bootstraps one here.
func seedAdmin(ctx context.Context, db *sql.DB) error {
	email := os.Getenv("CIVICAID_ADMIN_EMAIL")
	password := os.Getenv("CIVICAID_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("CIVICAID_ADMIN_EMAIL and CIVICAID_ADMIN_PASSWORD are required")
	}
	if len(password) < auth.MinPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters", auth.MinPasswordLength)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	store := auth.NewPGStore(db)
	err = store.CreateUser(ctx, &auth.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, auth.ErrDuplicateEmail) {
		log.Printf("admin %s already exists, skipping", email)
		return nil
	}
	return err
}
