package state

import (
	"database/sql"
	"errors"
)

// Preferences are the user settings that survive across files and restarts.
type Preferences struct {
	Volume        int  // percent, 0-100
	ShowRemaining bool // total label shows remaining time
}

// getPreferences returns nil when nothing was saved yet.
func getPreferences(db *sql.DB) (*Preferences, error) {
	var p Preferences
	row := db.QueryRow(`SELECT volume, show_remaining FROM preferences WHERE id = 1`)
	err := row.Scan(&p.Volume, &p.ShowRemaining)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absent row is not an error
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func savePreferences(db *sql.DB, p Preferences) error {
	_, err := db.Exec(`
		INSERT INTO preferences (id, volume, show_remaining)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			show_remaining = excluded.show_remaining
	`, p.Volume, p.ShowRemaining)
	return err
}
