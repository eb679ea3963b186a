package board

import (
	"errors"

	"github.com/epw80/message-board/pkg/storage"
)

var (
	// ErrValidation wraps message.ErrEmptyText or message.ErrTextTooLong.
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("Message not found")

	// ErrPersistence is re-exported so callers need not import storage.
	ErrPersistence = storage.ErrPersistence
)
