package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	dnderr "github.com/KirkDiggler/sheet-bot/internal/errors"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	guild_id  INTEGER NOT NULL,
	author_id INTEGER NOT NULL,
	sheet     TEXT    NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_guild_author_sheet ON users (guild_id, author_id, sheet);
CREATE UNIQUE INDEX IF NOT EXISTS users_guild_author ON users (guild_id, author_id);
CREATE UNIQUE INDEX IF NOT EXISTS users_guild_sheet ON users (guild_id, sheet);
`

// sqliteRepo keeps one connection and serializes every statement on it
type sqliteRepo struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens (creating if needed) the claims database at path and ensures the
// users table and its unique indexes exist. Safe to call on an existing database.
func NewSQLite(path string) (Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, dnderr.InvalidArgument("claims database path is required")
	}
	// the driver reads everything after '?' as connection parameters
	if strings.Contains(path, "?") {
		return nil, dnderr.InvalidArgument("claims database path must not contain '?'").
			WithMeta("path", path)
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create claims schema: %w", err)
	}

	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) Lookup(ctx context.Context, communityID, memberID uint64) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sheet string
	err := r.db.QueryRowContext(ctx,
		`SELECT sheet FROM users WHERE guild_id = ? AND author_id = ?`,
		int64(communityID), int64(memberID),
	).Scan(&sheet)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, dnderr.Wrap(err, "failed to look up claim").
			WithMeta("guild_id", communityID).
			WithMeta("member_id", memberID)
	}

	return sheet, true, nil
}

func (r *sqliteRepo) Claim(ctx context.Context, communityID, memberID uint64, sheet string) error {
	if sheet == "" {
		return dnderr.InvalidArgument("sheet name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (guild_id, author_id, sheet) VALUES (?, ?, ?)
		 ON CONFLICT (guild_id, author_id) DO UPDATE SET sheet = excluded.sheet`,
		int64(communityID), int64(memberID), sheet,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dnderr.AlreadyExistsf("sheet %s is already claimed", sheet).
				WithMeta("guild_id", communityID).
				WithMeta("member_id", memberID)
		}
		return dnderr.Wrap(err, "failed to store claim").
			WithMeta("guild_id", communityID).
			WithMeta("member_id", memberID)
	}

	return nil
}

func (r *sqliteRepo) ListByCommunity(ctx context.Context, communityID uint64) ([]*Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT author_id, sheet FROM users WHERE guild_id = ? ORDER BY sheet`,
		int64(communityID),
	)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list claims").WithMeta("guild_id", communityID)
	}
	defer rows.Close()

	var result []*Claim
	for rows.Next() {
		var memberID int64
		var sheet string
		if err := rows.Scan(&memberID, &sheet); err != nil {
			return nil, dnderr.Wrap(err, "failed to scan claim")
		}
		result = append(result, &Claim{
			CommunityID: communityID,
			MemberID:    uint64(memberID),
			SheetName:   sheet,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, dnderr.Wrap(err, "failed to list claims").WithMeta("guild_id", communityID)
	}

	return result, nil
}

func (r *sqliteRepo) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
