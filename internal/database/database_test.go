package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRunsMigrations(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"users", "access_tokens", "pending_registrations"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	q := `SELECT id FROM users WHERE email = $1 OR phone = $2 LIMIT $10`

	pg := &DB{Dialect: Postgres}
	if got := pg.Rebind(q); got != q {
		t.Errorf("postgres rebind changed query: %q", got)
	}

	lite := &DB{Dialect: SQLite}
	want := `SELECT id FROM users WHERE email = ? OR phone = ? LIMIT ?`
	if got := lite.Rebind(q); got != want {
		t.Errorf("sqlite rebind = %q, want %q", got, want)
	}
}

func TestUniqueViolationSQLite(t *testing.T) {
	db := openTestDB(t)

	insert := `INSERT INTO users (name, email, phone, password_hash) VALUES (?, ?, ?, ?)`
	if _, err := db.Exec(insert, "Aya", "phone@x.com", "1", "h"); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	cases := []struct {
		email, phone string
		want         string
	}{
		{"phone@x.com", "2", "email"},
		{"other@x.com", "1", "phone"},
	}
	for _, tc := range cases {
		_, err := db.Exec(insert, "Aya", tc.email, tc.phone, "h")
		if err == nil {
			t.Fatalf("insert %s/%s: expected unique violation", tc.email, tc.phone)
		}
		col, ok := UniqueViolation(err)
		if !ok || col != tc.want {
			t.Errorf("UniqueViolation(%v) = %q, %v; want %q", err, col, ok, tc.want)
		}
	}
}

func TestUniqueViolationPostgres(t *testing.T) {
	cases := []struct {
		name string
		err  error
		col  string
		ok   bool
	}{
		{
			name: "email value mentions phone",
			err:  &pq.Error{Code: "23505", Table: "users", Constraint: "users_email_unique", Detail: "Key (email)=(phone@x.com) already exists."},
			col:  "email", ok: true,
		},
		{
			name: "phone",
			err:  &pq.Error{Code: "23505", Table: "users", Constraint: "users_phone_unique", Detail: "Key (phone)=(1) already exists."},
			col:  "phone", ok: true,
		},
		{
			name: "default key name without table",
			err:  &pq.Error{Code: "23505", Constraint: "users_phone_key"},
			col:  "phone", ok: true,
		},
		{
			name: "wrapped",
			err:  fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Table: "users", Constraint: "users_email_unique"}),
			col:  "email", ok: true,
		},
		{
			name: "not null violation",
			err:  &pq.Error{Code: "23502", Table: "users", Column: "email"},
		},
		{
			name: "plain error",
			err:  errors.New("UNIQUE constraint failed: users.email"),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			col, ok := UniqueViolation(tc.err)
			if col != tc.col || ok != tc.ok {
				t.Errorf("UniqueViolation = %q, %v; want %q, %v", col, ok, tc.col, tc.ok)
			}
		})
	}
}

func TestSQLiteColumn(t *testing.T) {
	cases := map[string]string{
		"constraint failed: UNIQUE constraint failed: users.email (2067)": "email",
		"UNIQUE constraint failed: users.phone":                           "phone",
		"UNIQUE constraint failed: pending_registrations.code (1555)":     "code",
		"UNIQUE constraint failed: t.a, t.b":                              "a",
		"no column here":                                                  "",
	}
	for msg, want := range cases {
		if got := sqliteColumn(msg); got != want {
			t.Errorf("sqliteColumn(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestParseDialect(t *testing.T) {
	tests := map[string]Dialect{
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		"sqlite":     SQLite,
		"sqlite3":    SQLite,
	}
	for in, want := range tests {
		got, err := ParseDialect(in)
		if err != nil || got != want {
			t.Errorf("ParseDialect(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}

func TestOpenTwiceReusesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")

	first, err := Open("sqlite", path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := first.Exec(`INSERT INTO users (name, email, phone, password_hash) VALUES (?, ?, ?, ?)`, "Aya", "aya@x.com", "1", "h"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	first.Close()

	second, err := Open("sqlite", path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	var n int
	if err := second.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("users = %d, want 1 after reopening", n)
	}
}
