package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/epw80/message-board/pkg/message"
)

// badgerKey holds the whole collection as a single value
const badgerKey = "board:messages"

// BadgerStore keeps the collection in an embedded BadgerDB
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadgerStore opens (or creates) the database at path and seeds an empty
// collection when none is stored yet
func OpenBadgerStore(path string, logger *slog.Logger) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		logger: logger,
	}

	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("Badger store initialized", slog.String("path", path))
	return s, nil
}

func (s *BadgerStore) init() error {
	created := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(badgerKey))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		created = true
		return txn.Set([]byte(badgerKey), emptyCollection)
	})
	if err != nil {
		return fmt.Errorf("failed to seed badger collection: %w", err)
	}

	if created {
		s.logger.Info("Data file created", slog.String("key", badgerKey))
	}
	return nil
}

// ReadAll loads and parses the stored collection
func (s *BadgerStore) ReadAll(ctx context.Context) ([]message.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []message.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read badger collection: %w", err)
	}

	msgs, err := decodeCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse badger collection: %w", err)
	}
	return msgs, nil
}

// WriteAll replaces the stored collection in one transaction
func (s *BadgerStore) WriteAll(ctx context.Context, msgs []message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeCollection(msgs)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write badger collection: %w", err)
	}
	return nil
}

// HealthCheck verifies the database is still open
func (s *BadgerStore) HealthCheck(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger health check failed: database is closed")
	}
	return nil
}

// Close closes the underlying database
func (s *BadgerStore) Close() error {
	s.logger.Info("Badger store closed")
	return s.db.Close()
}
