package migration

import (
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestApply(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, testFS(map[string]string{
		"001_entries.sql": "CREATE TABLE entries (key TEXT PRIMARY KEY);",
		"002_fetched.sql": "ALTER TABLE entries ADD COLUMN fetched_at TEXT;",
		"README.md":       "ignored",
	}))

	version, err := runner.CurrentVersion()
	if err != nil || version != 0 {
		t.Fatalf("CurrentVersion() = %d, %v; want 0", version, err)
	}

	var logs []string
	applied, err := runner.Apply(func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("Apply() applied %d, want 2", applied)
	}
	if len(logs) == 0 {
		t.Error("Apply() did not log progress")
	}

	version, _ = runner.CurrentVersion()
	if version != 2 {
		t.Errorf("CurrentVersion() = %d after apply, want 2", version)
	}

	applied, err = runner.Apply(nil)
	if err != nil || applied != 0 {
		t.Errorf("second Apply() = %d, %v; want 0, nil", applied, err)
	}

	pending, err := runner.Pending()
	if err != nil || pending != 0 {
		t.Errorf("Pending() = %d, %v; want 0", pending, err)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, testFS(map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE broken (id INTEGER",
	}))

	applied, err := runner.Apply(nil)
	if err == nil {
		t.Fatal("Apply() should fail on broken SQL")
	}
	if applied != 1 {
		t.Errorf("Apply() applied %d before failing, want 1", applied)
	}
	if version, _ := runner.CurrentVersion(); version != 1 {
		t.Errorf("CurrentVersion() = %d, want 1", version)
	}
}

func TestReadMigrationsValidation(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "missing underscore", files: map[string]string{"001.sql": ""}},
		{name: "non numeric version", files: map[string]string{"abc_init.sql": ""}},
		{name: "zero version", files: map[string]string{"000_init.sql": ""}},
		{name: "duplicate version", files: map[string]string{"001_a.sql": "", "01_b.sql": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), testFS(tt.files))
			if _, err := runner.ReadMigrations(); err == nil {
				t.Error("ReadMigrations() should fail")
			}
		})
	}
}

func TestValidateVersionRejectsNewerSchema(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, testFS(map[string]string{"001_init.sql": "CREATE TABLE t (id INTEGER);"}))

	if err := runner.EnsureSchemaVersionTable(); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (5)"); err != nil {
		t.Fatal(err)
	}

	err := runner.ValidateVersion()
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("ValidateVersion() = %v, want newer-schema error", err)
	}
	if _, err := runner.Apply(nil); err == nil {
		t.Error("Apply() should refuse a newer schema")
	}
}
