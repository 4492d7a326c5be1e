package storage

import "time"

// Entry is one persisted cache value.
type Entry struct {
	Key       string
	Value     []byte
	FetchedAt time.Time
}

// Provider persists the query cache between runs.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Entries
	SaveEntry(Entry) error
	GetEntry(key string) (Entry, error)
	DeleteEntry(key string) error
	DeletePrefix(prefix string) error
	AllEntries() ([]Entry, error)

	// Utils
	SchemaStatus() (current, latest int, err error)
	GetConfigPath() string
}
