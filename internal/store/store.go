// Package store handles SQLite persistence of frequency tables.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/phonopass/internal/model"
	"github.com/verte-zerg/phonopass/pkg/phonetic"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a named table does not exist.
var ErrNotFound = errors.New("table not found")

// Store wraps SQLite access for frequency tables.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tables (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			vowels TEXT NOT NULL,
			words INTEGER NOT NULL,
			source TEXT NOT NULL,
			built_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS segments (
			table_id INTEGER NOT NULL,
			kind INTEGER NOT NULL,
			role INTEGER NOT NULL,
			position INTEGER NOT NULL,
			text TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (table_id, kind, role, position)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveTable stores table under name, replacing any table with that name.
func (s *Store) SaveTable(ctx context.Context, name, source string, table *phonetic.Table) (err error) {
	if name == "" {
		return fmt.Errorf("table name is required")
	}
	if table == nil {
		return fmt.Errorf("table is nil")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if err = deleteByName(ctx, tx, name); errors.Is(err, ErrNotFound) {
		err = nil
	}
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO tables (name, vowels, words, source, built_at) VALUES (?, ?, ?, ?, ?)`,
		name, table.Vowels(), table.Words(), source, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segments (table_id, kind, role, position, text, count) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, slot := range table.Slots() {
		for pos, e := range table.Entries(slot.Kind, slot.Role) {
			if _, err = stmt.ExecContext(ctx, id, int(slot.Kind), int(slot.Role), pos, e.Text, e.Count); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// LoadTable rebuilds the named table.
func (s *Store) LoadTable(ctx context.Context, name string) (*phonetic.Table, model.TableInfo, error) {
	info, err := s.tableInfo(ctx, name)
	if err != nil {
		return nil, model.TableInfo{}, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, role, text, count FROM segments WHERE table_id = ? ORDER BY kind, role, position`, info.ID)
	if err != nil {
		return nil, model.TableInfo{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	slots := make(map[phonetic.Slot][]phonetic.Entry)
	for rows.Next() {
		var kind, role int
		var e phonetic.Entry
		if err := rows.Scan(&kind, &role, &e.Text, &e.Count); err != nil {
			return nil, model.TableInfo{}, err
		}
		slot := phonetic.Slot{Kind: phonetic.Kind(kind), Role: phonetic.Role(role)}
		slots[slot] = append(slots[slot], e)
	}
	if err := rows.Err(); err != nil {
		return nil, model.TableInfo{}, err
	}
	table, err := phonetic.NewTable(info.Vowels, info.Words, slots)
	if err != nil {
		return nil, model.TableInfo{}, fmt.Errorf("stored table %q is corrupt: %w", name, err)
	}
	info.Segments = segmentCount(table)
	return table, info, nil
}

// ListTables returns stored tables ordered by name.
func (s *Store) ListTables(ctx context.Context) ([]model.TableInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.vowels, t.words, t.source, t.built_at, COUNT(g.table_id)
		FROM tables t
		LEFT JOIN segments g ON g.table_id = t.id
		GROUP BY t.id
		ORDER BY t.name`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.TableInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteTable removes the named table and its segments.
func (s *Store) DeleteTable(ctx context.Context, name string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if err = deleteByName(ctx, tx, name); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) tableInfo(ctx context.Context, name string) (model.TableInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, vowels, words, source, built_at, 0 FROM tables WHERE name = ?`, name)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TableInfo{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return info, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(row scanner) (model.TableInfo, error) {
	var info model.TableInfo
	var builtAt string
	if err := row.Scan(&info.ID, &info.Name, &info.Vowels, &info.Words, &info.Source, &builtAt, &info.Segments); err != nil {
		return model.TableInfo{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, builtAt)
	if err != nil {
		return model.TableInfo{}, fmt.Errorf("failed to parse built_at: %w", err)
	}
	info.BuiltAt = t
	return info, nil
}

func deleteByName(ctx context.Context, tx *sql.Tx, name string) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM tables WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE table_id = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id)
	return err
}

func segmentCount(table *phonetic.Table) int {
	n := 0
	for _, slot := range table.Slots() {
		n += len(table.Entries(slot.Kind, slot.Role))
	}
	return n
}
