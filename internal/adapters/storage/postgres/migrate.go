package postgres

import (
	"context"

	"clinic-records/migrations"

	"github.com/pressly/goose/v3"
)

// Migrate aplica las migraciones embebidas pendientes.
func Migrate(ctx context.Context, dsn string) error {
	db, err := OpenSQL(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
