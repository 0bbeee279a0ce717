package state

import (
	"context"
	"database/sql"

	"github.com/llehouerou/reprise/internal/db"
)

var migrations = []db.Migration{
	{
		Version: 1,
		SQL: `
			CREATE TABLE IF NOT EXISTS preferences (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				volume INTEGER NOT NULL CHECK (volume BETWEEN 0 AND 100),
				show_remaining INTEGER NOT NULL DEFAULT 0
			)
		`,
	},
}

func initSchema(conn *sql.DB) error {
	_, err := db.Migrate(context.Background(), conn, migrations)
	return err
}
