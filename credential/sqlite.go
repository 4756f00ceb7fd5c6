package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/MrEthical07/goSession/credential/migrations"
)

// OpenSQLite opens (or creates) the credential database at dsn and runs the
// embedded schema migrations. The caller owns the returned handle.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackingUnavailable, err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrBackingUnavailable, err)
	}

	return db, nil
}

// SQLiteBacking persists one credential string per session key in a local
// SQLite database. It is the durable choice for desktop-style deployments
// where no Redis is available.
type SQLiteBacking struct {
	db   *sql.DB
	name string
}

// NewSQLiteBacking creates a [SQLiteBacking] over an open database, normally
// one returned by [OpenSQLite]. An empty name defaults to
// [DefaultStorageName].
func NewSQLiteBacking(db *sql.DB, name string) *SQLiteBacking {
	if name == "" {
		name = DefaultStorageName
	}
	return &SQLiteBacking{db: db, name: name}
}

// Load retrieves the credential for the session key.
func (b *SQLiteBacking) Load(ctx context.Context, sessionKey string) (string, bool, error) {
	var token string
	err := b.db.QueryRowContext(ctx,
		`SELECT token FROM session_credentials WHERE session_key = ? AND name = ?`,
		normalizeSessionKey(sessionKey), b.name,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrBackingUnavailable, err)
	}
	return token, true, nil
}

// Store writes the credential for the session key, replacing any prior value.
func (b *SQLiteBacking) Store(ctx context.Context, sessionKey, token string) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO session_credentials (session_key, name, token, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(session_key, name) DO UPDATE SET
		   token = excluded.token,
		   updated_at = CURRENT_TIMESTAMP`,
		normalizeSessionKey(sessionKey), b.name, token,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackingUnavailable, err)
	}
	return nil
}

// Delete removes the credential for the session key. Deleting an absent key
// succeeds.
func (b *SQLiteBacking) Delete(ctx context.Context, sessionKey string) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM session_credentials WHERE session_key = ? AND name = ?`,
		normalizeSessionKey(sessionKey), b.name,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackingUnavailable, err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (b *SQLiteBacking) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrBackingUnavailable, err)
	}
	return nil
}
