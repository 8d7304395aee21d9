// seed-admin creates or updates the admin console user.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Override the defaults with ADMIN_USERNAME / ADMIN_PASSWORD.
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/models"
)

const (
	defaultUsername = "teahouseAdmin"
	defaultPassword = "Te@houseAdmin"
	adminName       = "Tea House Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = defaultUsername
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = defaultPassword
	}

	user, err := models.UpsertUser(ctx, username, adminName, password, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to upsert admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin user %q ready (id %d)\n", user.Username, user.ID)
}
