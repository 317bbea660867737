package store

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"dashboard-service/config"
	"dashboard-service/db"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	// These tests need a dedicated PostgreSQL database configured through
	// DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME and DB_SSLMODE.
	if os.Getenv("DB_HOST") == "" || os.Getenv("DB_USER") == "" || os.Getenv("DB_NAME") == "" {
		log.Println("Skipping PostgreSQL tests: DB_HOST, DB_USER, or DB_NAME environment variables not set.")
	} else {
		port, _ := strconv.Atoi(os.Getenv("DB_PORT"))
		if port == 0 {
			port = config.DefaultPGPort
		}
		pg := config.Postgres{
			Host:     os.Getenv("DB_HOST"),
			Port:     port,
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  os.Getenv("DB_SSLMODE"),
		}
		ctx := context.Background()
		conn, err := db.Open(ctx, pg)
		if err != nil {
			log.Fatalf("Failed to open test database: %v", err)
		}
		if err := db.EnsureSchema(ctx, conn); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		testDB = conn
	}

	exitCode := m.Run()
	if testDB != nil {
		testDB.Close()
	}
	os.Exit(exitCode)
}

func clearSlotsTable(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec("TRUNCATE slots")
	require.NoError(t, err)
}

func TestPostgresSlots(t *testing.T) {
	if testDB == nil {
		t.Skip("Skipping test: DB connection not initialized.")
	}
	clearSlotsTable(t)
	exerciseSlots(t, NewPostgresSlots(testDB))
}
