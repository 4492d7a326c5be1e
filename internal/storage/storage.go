package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a key has no persisted entry.
var ErrNotFound = errors.New("cache entry not found")

type entryRow struct {
	Key       string `db:"key"`
	Value     []byte `db:"value"`
	FetchedAt int64  `db:"fetched_at"`
}

func (r entryRow) entry() Entry {
	return Entry{Key: r.Key, Value: r.Value, FetchedAt: time.Unix(0, r.FetchedAt)}
}

// Entries implements the entry operations shared by the SQL backends. The
// statements are written with ? placeholders and rebound per driver.
type Entries struct {
	DB *sqlx.DB
}

func (e Entries) SaveEntry(entry Entry) error {
	if e.DB == nil {
		return errors.New("storage not loaded")
	}
	_, err := e.DB.NamedExec(`
		INSERT INTO cache_entries (key, value, fetched_at)
		VALUES (:key, :value, :fetched_at)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, fetched_at = excluded.fetched_at`,
		entryRow{Key: entry.Key, Value: entry.Value, FetchedAt: entry.FetchedAt.UnixNano()})
	if err != nil {
		return fmt.Errorf("saving cache entry %s: %w", entry.Key, err)
	}
	return nil
}

func (e Entries) GetEntry(key string) (Entry, error) {
	if e.DB == nil {
		return Entry{}, errors.New("storage not loaded")
	}
	var row entryRow
	err := e.DB.Get(&row, e.DB.Rebind("SELECT key, value, fetched_at FROM cache_entries WHERE key = ?"), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	return row.entry(), nil
}

func (e Entries) DeleteEntry(key string) error {
	if e.DB == nil {
		return errors.New("storage not loaded")
	}
	if _, err := e.DB.Exec(e.DB.Rebind("DELETE FROM cache_entries WHERE key = ?"), key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

func (e Entries) DeletePrefix(prefix string) error {
	if e.DB == nil {
		return errors.New("storage not loaded")
	}
	_, err := e.DB.Exec(e.DB.Rebind(`DELETE FROM cache_entries WHERE key LIKE ? ESCAPE '\'`), escapeLike(prefix)+"%")
	if err != nil {
		return fmt.Errorf("deleting cache entries with prefix %q: %w", prefix, err)
	}
	return nil
}

func (e Entries) AllEntries() ([]Entry, error) {
	if e.DB == nil {
		return nil, errors.New("storage not loaded")
	}
	var rows []entryRow
	if err := e.DB.Select(&rows, "SELECT key, value, fetched_at FROM cache_entries ORDER BY key"); err != nil {
		return nil, fmt.Errorf("listing cache entries: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// IsPostgres reports whether a cache location is a Postgres connection string.
func IsPostgres(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}
