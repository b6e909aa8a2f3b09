package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

// The narrator schema ships inside the binary so cmd/api and cmd/migrate
// never depend on files next to the executable.
//
//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies the embedded narrator schema migrations via goose.
// A nil database means the service is running on the in-memory narrator
// store, so there is nothing to migrate.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, "migrations")
}
