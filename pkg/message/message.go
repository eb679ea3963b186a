package message

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Message is a single board entry, as persisted and as returned to clients
type Message struct {
	ID        string    `json:"_id" dynamodbav:"ID"`
	Text      string    `json:"text" dynamodbav:"Text"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"CreatedAt"`
}

// Validation constants
const (
	MaxTextLength = 500
)

// TimestampLayout renders instants as ISO-8601 with millisecond precision
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	ErrEmptyText     = errors.New("Message text is required")
	ErrTextTooLong   = errors.New("Message too long (max 500 characters)")
	ErrEmptyID       = errors.New("message id cannot be empty")
	ErrUntrimmedText = errors.New("message text has surrounding whitespace")
)

var validate = validator.New()

// textRules carries the length rules for message text. The max tag counts
// runes, not bytes.
type textRules struct {
	Text string `validate:"required,max=500"`
}

// NormalizeText trims surrounding whitespace and checks the length rules
func NormalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if err := validateText(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

func validateText(text string) error {
	err := validate.Struct(textRules{Text: text})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() == "max" {
		return ErrTextTooLong
	}
	return ErrEmptyText
}

// Validate checks if the message meets all requirements
func (m *Message) Validate() error {
	if m.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(m.Text) != m.Text {
		return ErrUntrimmedText
	}
	return validateText(m.Text)
}

// New creates a message from raw user input. The text is trimmed; the id is
// a random UUID and the creation time is the current instant in UTC,
// truncated to milliseconds.
func New(text string) (*Message, error) {
	normalized, err := NormalizeText(text)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        uuid.NewString(),
		Text:      normalized,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}, nil
}

// MarshalJSON renders createdAt with a fixed millisecond width
func (m Message) MarshalJSON() ([]byte, error) {
	type record struct {
		ID        string `json:"_id"`
		Text      string `json:"text"`
		CreatedAt string `json:"createdAt"`
	}
	return json.Marshal(record{
		ID:        m.ID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC().Format(TimestampLayout),
	})
}
