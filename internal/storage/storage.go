package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// gamePrefix namespaces the per-game records in the key space.
const gamePrefix = "game:"

// GameRecord is the persisted state of one game in progress. It is enough
// to rebuild the policy state after a restart: the position comes back from
// the FEN and the stage and last move seed the Game.
type GameRecord struct {
	FEN       string    `json:"fen"`
	Stage     int       `json:"stage"`
	LastMove  string    `json:"last_move"`
	Color     string    `json:"color"`
	Moves     int       `json:"moves"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store wraps BadgerDB for persistent game storage.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database in the given directory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open storage at %s: %w", dir, err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveGame stores the record under the game id, stamping UpdatedAt.
func (s *Store) SaveGame(id string, rec GameRecord) error {
	rec.UpdatedAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(gamePrefix+id), data)
	})
}

// LoadGame returns the record for the game id; ok is false when the id is
// unknown.
func (s *Store) LoadGame(id string) (GameRecord, bool, error) {
	var rec GameRecord
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(gamePrefix + id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})

	return rec, found, err
}

// DeleteGame removes the record for the game id. Deleting an unknown id is
// not an error.
func (s *Store) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(gamePrefix + id))
	})
}

// ListGames returns the ids of all stored games.
func (s *Store) ListGames() ([]string, error) {
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(gamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, gamePrefix))
		}
		return nil
	})

	return ids, err
}
