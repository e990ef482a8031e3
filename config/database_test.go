package config

import (
	"strings"
	"testing"
)

func TestDatabaseDSN_SetsIsolationOnEveryConnection(t *testing.T) {
	t.Setenv("DB_USER", "books")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "posdb")

	dsn := databaseDSN()
	if !strings.HasPrefix(dsn, "books:secret@tcp(127.0.0.1:3306)/posdb?") {
		t.Fatalf("unexpected dsn shape: %s", dsn)
	}
	// The isolation level must ride on the DSN so the whole pool gets it,
	// not just whichever connection ran a SET SESSION statement.
	if !strings.Contains(dsn, "transaction_isolation=%27READ-COMMITTED%27") {
		t.Fatalf("dsn missing transaction_isolation: %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("dsn missing parseTime: %s", dsn)
	}
}
