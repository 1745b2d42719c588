package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationTable records applied migrations.
const MigrationTable = "todo_schema_migrations"

func migrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFS,
		Root:       "migrations",
	}
}

// MigrateUp applies every pending migration and returns how many ran.
func MigrateUp(ctx context.Context, db *sqlx.DB) (int, error) {
	migrate.SetTable(MigrationTable)
	n, err := migrate.ExecContext(ctx, db.DB, "postgres", migrationSource(), migrate.Up)
	if err != nil {
		return n, fmt.Errorf("apply migrations: %w", err)
	}
	return n, nil
}

// MigrateDown rolls back at most steps migrations; steps <= 0 means all.
func MigrateDown(ctx context.Context, db *sqlx.DB, steps int) (int, error) {
	migrate.SetTable(MigrationTable)
	n, err := migrate.ExecMaxContext(ctx, db.DB, "postgres", migrationSource(), migrate.Down, steps)
	if err != nil {
		return n, fmt.Errorf("roll back migrations: %w", err)
	}
	return n, nil
}

// MigrationStatus lists applied and pending migration ids.
func MigrationStatus(db *sqlx.DB) (applied, pending []string, err error) {
	migrate.SetTable(MigrationTable)
	all, err := migrationSource().FindMigrations()
	if err != nil {
		return nil, nil, fmt.Errorf("find migrations: %w", err)
	}
	records, err := migrate.GetMigrationRecords(db.DB, "postgres")
	if err != nil {
		return nil, nil, fmt.Errorf("read migration records: %w", err)
	}

	done := make(map[string]bool, len(records))
	for _, r := range records {
		done[r.Id] = true
	}
	for _, m := range all {
		if done[m.Id] {
			applied = append(applied, m.Id)
		} else {
			pending = append(pending, m.Id)
		}
	}
	return applied, pending, nil
}
