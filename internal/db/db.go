package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

var dbInitialized bool

// GetDB returns the database connection, initializing if needed.
// The database lives under $MENDER_HOME (default ~/.mender).
func GetDB() (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	menderDir, err := homeDir()
	if err != nil {
		return nil, err
	}
	dbPath := filepath.Join(menderDir, "mender.db")

	if err := os.MkdirAll(menderDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", menderDir, err)
	}

	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run schema init on first connection (but avoid recursion)
	if !dbInitialized {
		dbInitialized = true
		if err := InitSchema(); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return db, nil
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// GetDBPath returns the path to the database file
func GetDBPath() (string, error) {
	menderDir, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(menderDir, "mender.db"), nil
}

func homeDir() (string, error) {
	if dir := os.Getenv("MENDER_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mender"), nil
}
