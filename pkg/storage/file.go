package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/epw80/message-board/pkg/message"
)

// FileStore keeps the collection as one JSON array in a flat file
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore returns a store backed by path, creating the file with an
// empty array when it does not exist yet
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger,
	}

	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) init() error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat data file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := s.replace(emptyCollection); err != nil {
		return fmt.Errorf("failed to create data file: %w", err)
	}

	s.logger.Info("Data file created", slog.String("path", s.path))
	return nil
}

// ReadAll reads and parses the whole file
func (s *FileStore) ReadAll(ctx context.Context) ([]message.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	msgs, err := decodeCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}
	return msgs, nil
}

// WriteAll overwrites the file with the pretty-printed collection
func (s *FileStore) WriteAll(ctx context.Context, msgs []message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeCollection(msgs)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	if err := s.replace(data); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	return nil
}

// replace writes data to a sibling temp file and renames it over the target,
// so readers see either the old or the new content
func (s *FileStore) replace(data []byte) error {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// HealthCheck verifies the data file is still present
func (s *FileStore) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("data file health check failed: %w", err)
	}
	return nil
}

// Close releases resources (the file store holds no open handles)
func (s *FileStore) Close() error {
	return nil
}
