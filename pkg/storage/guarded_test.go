package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/epw80/message-board/pkg/message"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("disk on fire")

// brokenStore fails every operation it is told to fail
type brokenStore struct {
	readErr  error
	writeErr error
	msgs     []message.Message
	writes   int
}

func (b *brokenStore) ReadAll(ctx context.Context) ([]message.Message, error) {
	if b.readErr != nil {
		return nil, b.readErr
	}
	return b.msgs, nil
}

func (b *brokenStore) WriteAll(ctx context.Context, msgs []message.Message) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	b.writes++
	b.msgs = msgs
	return nil
}

func (b *brokenStore) HealthCheck(ctx context.Context) error { return b.readErr }
func (b *brokenStore) Close() error                          { return nil }

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestParseReadPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    ReadPolicy
		wantErr bool
	}{
		{"open", FailOpen, false},
		{"", FailOpen, false},
		{"closed", FailClosed, false},
		{"maybe", FailOpen, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReadPolicy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReadPolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseReadPolicy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// Read failures are silent under fail-open: the caller sees an empty board.
func Test_Guarded_FailOpen_Read_Returns_Empty(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	g := NewGuarded(&brokenStore{readErr: errBroken}, FailOpen, bufferLogger(&buf))

	msgs, err := g.ReadAll(context.Background())
	req.NoError(err)
	req.NotNil(msgs)
	req.Empty(msgs)
	req.Contains(buf.String(), "Failed to read messages")
	req.Contains(buf.String(), errBroken.Error())
}

func Test_Guarded_FailClosed_Read_Returns_Error(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	g := NewGuarded(&brokenStore{readErr: errBroken}, FailClosed, bufferLogger(&buf))

	msgs, err := g.ReadAll(context.Background())
	req.Nil(msgs)
	req.ErrorIs(err, ErrPersistence)
	req.ErrorIs(err, errBroken)
	req.Contains(buf.String(), "Failed to read messages")
}

func Test_Guarded_Write_Failure_Is_Loud(t *testing.T) {
	for _, policy := range []ReadPolicy{FailOpen, FailClosed} {
		t.Run(policy.String(), func(t *testing.T) {
			req := require.New(t)
			var buf bytes.Buffer
			g := NewGuarded(&brokenStore{writeErr: errBroken}, policy, bufferLogger(&buf))

			err := g.WriteAll(context.Background(), sampleMessages())
			req.ErrorIs(err, ErrPersistence)
			req.ErrorIs(err, errBroken)
			req.Contains(buf.String(), "Failed to write messages")
		})
	}
}

func Test_Guarded_Write_Success_Logs_Count(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	inner := &brokenStore{}
	g := NewGuarded(inner, FailOpen, bufferLogger(&buf))

	req.NoError(g.WriteAll(context.Background(), sampleMessages()))
	req.Equal(1, inner.writes)
	req.True(strings.Contains(buf.String(), `"msg":"Messages saved"`))
	req.True(strings.Contains(buf.String(), `"count":3`))

	msgs, err := g.ReadAll(context.Background())
	req.NoError(err)
	req.Equal(sampleMessages(), msgs)
}

func Test_Guarded_Delegates_Health_And_Close(t *testing.T) {
	req := require.New(t)
	g := NewGuarded(&brokenStore{readErr: errBroken}, FailOpen, bufferLogger(&bytes.Buffer{}))

	req.ErrorIs(g.HealthCheck(context.Background()), errBroken)
	req.NoError(g.Close())
	req.Equal(FailOpen, g.Policy())
}
