package database

import (
	"strings"
	"testing"
)

func TestDialects(t *testing.T) {
	tests := []struct {
		name            string
		dialect         Dialect
		driver          string
		lastInsertID    bool
		migrationsDir   string
		upsertSubstring string
	}{
		{
			name:            "SQLite",
			dialect:         NewSQLiteDialect(),
			driver:          "sqlite3",
			lastInsertID:    true,
			migrationsDir:   "sqlite",
			upsertSubstring: "ON CONFLICT (user_id) DO UPDATE SET quiz_config = excluded.quiz_config",
		},
		{
			name:            "PostgreSQL",
			dialect:         NewPostgresDialect(),
			driver:          "postgres",
			lastInsertID:    false,
			migrationsDir:   "postgres",
			upsertSubstring: "ON CONFLICT (user_id) DO UPDATE SET quiz_config = excluded.quiz_config",
		},
		{
			name:            "MySQL",
			dialect:         NewMySQLDialect(),
			driver:          "mysql",
			lastInsertID:    true,
			migrationsDir:   "mysql",
			upsertSubstring: "ON DUPLICATE KEY UPDATE quiz_config = VALUES(quiz_config)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %v, want %v", got, tt.driver)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.lastInsertID {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.lastInsertID)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.migrationsDir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.migrationsDir)
			}

			upsert := tt.dialect.Upsert("user_settings", []string{"user_id"}, []string{"user_id", "quiz_config"})
			if !strings.HasPrefix(upsert, "INSERT INTO user_settings (user_id, quiz_config) VALUES (?, ?)") {
				t.Errorf("Upsert() = %q", upsert)
			}
			if !strings.Contains(upsert, tt.upsertSubstring) {
				t.Errorf("Upsert() = %q, want it to contain %q", upsert, tt.upsertSubstring)
			}
			if strings.Contains(upsert, "user_id = ") {
				t.Errorf("Upsert() updates the conflict column: %q", upsert)
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	d := NewSQLiteDialect()
	if got := d.DSN(DialectConfig{Path: "drill.db"}); got != "drill.db?_busy_timeout=5000" {
		t.Errorf("DSN() = %q", got)
	}
	if got := d.DSN(DialectConfig{Path: "file:drill.db?cache=shared"}); got != "file:drill.db?cache=shared" {
		t.Errorf("DSN() with options = %q", got)
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM words WHERE id = ?",
			expected: "SELECT * FROM words WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM words WHERE id = ?",
			expected: "SELECT * FROM words WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "UPDATE words SET bank = ?, due_date = ? WHERE id = ?",
			expected: "UPDATE words SET bank = $1, due_date = $2 WHERE id = $3",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE words SET bank = ?, due_date = ? WHERE id = ?",
			expected: "UPDATE words SET bank = ?, due_date = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- comment; with a semicolon
CREATE TABLE a (id INTEGER);

CREATE TABLE b (id INTEGER);
-- trailing
`
	stmts := splitStatements(content)
	if len(stmts) != 2 {
		t.Fatalf("len(splitStatements()) = %d, want 2: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("stmts[0] = %q", stmts[0])
	}
}
