// Command adduser creates an account directly against the configured backend.
// Useful for seeding a sqlite database before first login.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"lotbook/internal/auth"
	"lotbook/internal/backend"
	"lotbook/internal/config"
	"lotbook/internal/core"
)

func main() {
	_ = godotenv.Load()

	email := flag.String("email", "", "account email (required)")
	password := flag.String("password", "", "account password (required)")
	firstName := flag.String("first", "", "first name")
	lastName := flag.String("last", "", "last name")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: adduser -email user@example.com -password secret [-first Jo] [-last Doe]")
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Memory backend selected; the account will not outlive this process")
	}

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	}()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		logger.Error("Password hashing failed", "error", err)
		os.Exit(1)
	}

	nu := core.NewUser{Email: *email, PasswordHash: hash}
	if *firstName != "" {
		nu.FirstName = firstName
	}
	if *lastName != "" {
		nu.LastName = lastName
	}

	user, err := result.Store.CreateUser(context.Background(), nu)
	if err != nil {
		logger.Error("User creation failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("created user %d (%s)\n", user.ID, user.Email)
}
