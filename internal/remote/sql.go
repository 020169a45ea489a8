package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/taborganizer/internal/apperr"
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	name     string
	driver   string
	schema   string
	dollarPH bool
}

var sqliteDialect = dialect{
	name:   "sqlite",
	driver: "sqlite3",
	schema: `
CREATE TABLE IF NOT EXISTS tab_organizer (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tab_organizer_user ON tab_organizer(user_id, updated_at);

CREATE TABLE IF NOT EXISTS shared_libraries (
	id              TEXT PRIMARY KEY,
	sender_id       TEXT NOT NULL,
	sender_email    TEXT NOT NULL,
	recipient_email TEXT NOT NULL,
	library_name    TEXT NOT NULL DEFAULT '',
	library_icon    TEXT NOT NULL DEFAULT '',
	library_data    TEXT NOT NULL,
	status          TEXT NOT NULL,
	created_at      DATETIME NOT NULL,
	seen_at         DATETIME
);
CREATE INDEX IF NOT EXISTS idx_shared_recipient ON shared_libraries(recipient_email, created_at);
`,
}

var postgresDialect = dialect{
	name:     "postgres",
	driver:   "pgx",
	dollarPH: true,
	schema: `
CREATE TABLE IF NOT EXISTS tab_organizer (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tab_organizer_user ON tab_organizer(user_id, updated_at);

CREATE TABLE IF NOT EXISTS shared_libraries (
	id              TEXT PRIMARY KEY,
	sender_id       TEXT NOT NULL,
	sender_email    TEXT NOT NULL,
	recipient_email TEXT NOT NULL,
	library_name    TEXT NOT NULL DEFAULT '',
	library_icon    TEXT NOT NULL DEFAULT '',
	library_data    TEXT NOT NULL,
	status          TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	seen_at         TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_shared_recipient ON shared_libraries(recipient_email, created_at);

-- JSONB reorders object keys; documents rely on key order for display order.
ALTER TABLE tab_organizer ALTER COLUMN data TYPE TEXT;
ALTER TABLE shared_libraries ALTER COLUMN library_data TYPE TEXT;
`,
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (d dialect) rebind(q string) string {
	if !d.dollarPH {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQL is a Backend on SQLite or PostgreSQL.
type SQL struct {
	conn *sql.DB
	d    dialect
}

var _ Backend = (*SQL)(nil)

// OpenSQLite opens (or creates) a SQLite database file and applies the schema.
func OpenSQLite(path string) (*SQL, error) {
	return openSQL(sqliteDialect, path+"?_journal_mode=WAL&_busy_timeout=5000")
}

// OpenPostgres connects to PostgreSQL through pgx and applies the schema.
func OpenPostgres(dsn string) (*SQL, error) {
	return openSQL(postgresDialect, dsn)
}

func openSQL(d dialect, dsn string) (*SQL, error) {
	conn, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("remote: open %s: %w", d.name, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("remote: ping %s: %w", d.name, err)
	}
	if _, err := conn.Exec(d.schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("remote: apply %s schema: %w", d.name, err)
	}
	return &SQL{conn: conn, d: d}, nil
}

// Close closes the underlying connection pool.
func (s *SQL) Close() error {
	return s.conn.Close()
}

func (s *SQL) Get(ctx context.Context, identity string) (*Record, error) {
	var (
		data string
		at   time.Time
	)
	err := s.conn.QueryRowContext(ctx, s.d.rebind(
		`SELECT data, updated_at FROM tab_organizer WHERE user_id = ? ORDER BY updated_at DESC, id DESC LIMIT 1`,
	), identity).Scan(&data, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("remote: document %s: %w", identity, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("remote: get document: %w", err)
	}
	return &Record{Identity: identity, Data: []byte(data), UpdatedAt: at}, nil
}

// Put updates the newest row of identity, or inserts the first one.
func (s *SQL) Put(ctx context.Context, identity string, data []byte) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remote: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	var rowID int64
	err = tx.QueryRowContext(ctx, s.d.rebind(
		`SELECT id FROM tab_organizer WHERE user_id = ? ORDER BY updated_at DESC, id DESC LIMIT 1`,
	), identity).Scan(&rowID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, s.d.rebind(
			`INSERT INTO tab_organizer (user_id, data, updated_at) VALUES (?, ?, ?)`,
		), identity, string(data), now)
		if err != nil {
			return fmt.Errorf("remote: insert document: %w", err)
		}
	case err != nil:
		return fmt.Errorf("remote: find document: %w", err)
	default:
		_, err = tx.ExecContext(ctx, s.d.rebind(
			`UPDATE tab_organizer SET data = ?, updated_at = ? WHERE id = ?`,
		), string(data), now, rowID)
		if err != nil {
			return fmt.Errorf("remote: update document: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQL) CreateShare(ctx context.Context, sh Share) error {
	_, err := s.conn.ExecContext(ctx, s.d.rebind(`
		INSERT INTO shared_libraries
			(id, sender_id, sender_email, recipient_email, library_name, library_icon, library_data, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), sh.ID, sh.SenderID, sh.SenderEmail, sh.RecipientEmail, sh.LibraryName, sh.LibraryIcon,
		string(sh.LibraryData), string(sh.Status), sh.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("remote: create share: %w", err)
	}
	return nil
}

const shareColumns = `id, sender_id, sender_email, recipient_email, library_name, library_icon, library_data, status, created_at, seen_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShare(r rowScanner) (*Share, error) {
	var (
		sh     Share
		data   string
		status string
		seen   sql.NullTime
	)
	if err := r.Scan(&sh.ID, &sh.SenderID, &sh.SenderEmail, &sh.RecipientEmail,
		&sh.LibraryName, &sh.LibraryIcon, &data, &status, &sh.CreatedAt, &seen); err != nil {
		return nil, err
	}
	sh.LibraryData = []byte(data)
	sh.Status = ShareStatus(status)
	if seen.Valid {
		t := seen.Time
		sh.SeenAt = &t
	}
	return &sh, nil
}

func (s *SQL) GetShare(ctx context.Context, id string) (*Share, error) {
	row := s.conn.QueryRowContext(ctx, s.d.rebind(`SELECT `+shareColumns+` FROM shared_libraries WHERE id = ?`), id)
	sh, err := scanShare(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("remote: share %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("remote: get share: %w", err)
	}
	return sh, nil
}

func (s *SQL) ListShares(ctx context.Context, recipientEmail string, statuses ...ShareStatus) ([]Share, error) {
	q := `SELECT ` + shareColumns + ` FROM shared_libraries WHERE recipient_email = ?`
	args := []any{recipientEmail}
	if len(statuses) > 0 {
		q += ` AND status IN (?` + strings.Repeat(", ?", len(statuses)-1) + `)`
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.conn.QueryContext(ctx, s.d.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("remote: list shares: %w", err)
	}
	defer rows.Close()

	out := []Share{}
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("remote: scan share: %w", err)
		}
		out = append(out, *sh)
	}
	return out, rows.Err()
}

func (s *SQL) UpdateShareStatus(ctx context.Context, id string, status ShareStatus) error {
	res, err := s.conn.ExecContext(ctx, s.d.rebind(`UPDATE shared_libraries SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		return fmt.Errorf("remote: update share: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("remote: share %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (s *SQL) MarkSeen(ctx context.Context, id string, at time.Time) error {
	if _, err := s.GetShare(ctx, id); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx, s.d.rebind(
		`UPDATE shared_libraries SET seen_at = ? WHERE id = ? AND seen_at IS NULL`,
	), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("remote: mark share seen: %w", err)
	}
	return nil
}
