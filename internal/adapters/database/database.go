package database

import (
	"fmt"

	"github.com/Amund211/saberwatch/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const SQLITE_DRIVER = "sqlite"
const POSTGRES_DRIVER = "postgres"

const sqliteBusyTimeoutMillis = 5000

func NewSQLiteDatabase(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("NewSQLite: missing database path")
	}

	// modernc.org/sqlite registers as "sqlite", which sqlx does not know the bindvars for
	sqlx.BindDriver(SQLITE_DRIVER, sqlx.QUESTION)

	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		path,
		sqliteBusyTimeoutMillis,
	)
	db, err := sqlx.Connect(SQLITE_DRIVER, dsn)
	if err != nil {
		return nil, fmt.Errorf("NewSQLite: failed to connect to db: %w", err)
	}

	// Single writer
	db.SetMaxOpenConns(1)

	return db, nil
}

func NewPostgresDatabase(connectionString string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(POSTGRES_DRIVER, connectionString)
	if err != nil {
		return nil, fmt.Errorf("NewPostgres: failed to connect to db: %w", err)
	}

	return db, nil
}

// NewDatabase opens the store configured by conf. DATABASE_URL takes precedence over DATABASE_PATH.
func NewDatabase(conf config.Config) (*sqlx.DB, error) {
	if conf.UsePostgres() {
		db, err := NewPostgresDatabase(conf.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres database: %w", err)
		}
		return db, nil
	}

	db, err := NewSQLiteDatabase(conf.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite database: %w", err)
	}
	return db, nil
}
