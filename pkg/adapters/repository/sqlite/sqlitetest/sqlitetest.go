// Package sqlitetest provides an in-memory linkcomment database for tests.
package sqlitetest

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/wadjakorntonsri/linkcomment/pkg/adapters/repository/sqlite"
	_ "modernc.org/sqlite"
)

// Schema mirrors the production linkcomment table. The service never creates
// it; tests do.
const Schema = `
CREATE TABLE IF NOT EXISTS linkcomment (
	id TEXT PRIMARY KEY,
	link TEXT NOT NULL,
	comment TEXT NOT NULL,
	username TEXT NOT NULL,
	created_at REAL NOT NULL,
	updated_at REAL
);`

// NewDB opens a shared-cache in-memory database unique to t and creates the
// linkcomment table in it.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("create linkcomment table: %v", err)
	}
	return db
}

// NewRepository returns a repository backed by NewDB.
func NewRepository(t *testing.T) (*sqlite.SQLiteRepository, *sql.DB) {
	t.Helper()
	db := NewDB(t)
	return sqlite.NewFromDB(db), db
}
