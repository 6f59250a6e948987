package store

import "fmt"

// dialect holds the per-engine pieces: the database/sql driver name and
// the two statements whose syntax differs across engines.
type dialect struct {
	driverName     string
	createSettings string
	upsertSetting  string
}

const upsertSettingConflict = `INSERT INTO presence_settings (name, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "postgres":
		return dialect{
			driverName: "pgx",
			createSettings: `CREATE TABLE IF NOT EXISTS presence_settings (
				name TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			upsertSetting: upsertSettingConflict,
		}, nil

	case "mysql":
		return dialect{
			driverName: "mysql",
			createSettings: `CREATE TABLE IF NOT EXISTS presence_settings (
				name VARCHAR(64) PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			upsertSetting: `INSERT INTO presence_settings (name, value, updated_at)
				VALUES (?, ?, ?)
				ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`,
		}, nil

	case "sqlite":
		return dialect{
			driverName: "sqlite",
			createSettings: `CREATE TABLE IF NOT EXISTS presence_settings (
				name TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			upsertSetting: upsertSettingConflict,
		}, nil

	default:
		return dialect{}, fmt.Errorf("unsupported db driver %q", driver)
	}
}
