// Package storage reads and writes the ZanZarah game database.
//
// The game ships its data as a set of "fbs" tables which community tools
// convert into a SQLite file. Only the tables used by the script editor are
// touched here:
//
//	_fb0x01  fairies   col_1_ForeignKey name label, col_3_Integer card id
//	_fb0x02  labels    col_0_String text
//	_fb0x03  spells    col_0_ForeignKey name label, col_2_Integer card id
//	_fb0x04  items     col_0_ForeignKey name label, col_1_Integer card id, col_4_String script
//	_fb0x05  NPCs      col_0_ForeignKey name label, col_1..col_5 scripts
//	_fb0x06  dialogs   col_0_String text
//
// Foreign keys are stored as "uid|suffix"; only the uid part names a label.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no row matches a lookup.
var ErrNotFound = errors.New("storage: not found")

const logName = "zzed.storage"

// Store is an open game database.
type Store struct {
	sqlDB *sql.DB
}

// Open opens an existing game database. The schema is not created or
// migrated; a file that is not a game database fails on first use.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	commonlog.GetLogger(logName).Infof("opened game database %s", cleanPath)
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// queryString runs a single-column, single-row query.
func (s *Store) queryString(ctx context.Context, query string, args ...any) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	var value sql.NullString
	err := s.sqlDB.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value.String, nil
}

// labelUID returns the label part of a "uid|suffix" foreign key.
func labelUID(foreignKey string) string {
	uid, _, _ := strings.Cut(foreignKey, "|")
	return uid
}

// splitForeignKey splits a "uid|suffix" foreign key.
func splitForeignKey(foreignKey string) (uid, suffix string) {
	uid, suffix, _ = strings.Cut(foreignKey, "|")
	return uid, suffix
}

// joinForeignKey reverses splitForeignKey. Keys without a suffix are
// written back without the separator.
func joinForeignKey(uid, suffix string) string {
	if suffix == "" {
		return uid
	}
	return uid + "|" + suffix
}

// entityIDMatch compares the entity id embedded in a card id column to a
// script argument. The comparison is textual, as script arguments are
// never normalised.
func entityIDMatch(column string) string {
	return "CAST(((" + column + " >> 16) & 65535) AS TEXT) = ?"
}
