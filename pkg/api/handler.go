package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/epw80/message-board/pkg/board"
	"github.com/epw80/message-board/pkg/client"
	"github.com/epw80/message-board/pkg/hub"
	"github.com/epw80/message-board/pkg/message"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// maxBodyBytes caps request bodies at 100 KiB
const maxBodyBytes = 100 << 10

// Board is the message service the handlers drive
type Board interface {
	Create(ctx context.Context, text string) (*message.Message, error)
	List(ctx context.Context) ([]message.Message, error)
	Delete(ctx context.Context, id string) error
	Health(ctx context.Context) board.Health
}

// Feed is the live-feed hub websocket subscribers join
type Feed interface {
	Subscribe(hub.Subscriber)
	Unsubscribe(hub.Subscriber)
}

// Handler translates HTTP requests into Board calls
type Handler struct {
	board     Board
	feed      Feed
	logger    *slog.Logger
	staticDir string
	upgrader  websocket.Upgrader
}

// Health reports liveness and the number of stored messages
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.board.Health(r.Context())

	writeJSON(w, h.logger, http.StatusOK, healthResponse{
		Status:        health.Status,
		Timestamp:     health.Timestamp.Format(message.TimestampLayout),
		MessagesCount: health.Count,
	})
}

// Save creates a message from {"text": "..."}
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req saveRequest
	if err := decodeSingle(r.Body, &req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			// An empty body carries no text
		case errors.As(err, &tooLarge):
			writeError(w, h.logger, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		default:
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON body")
			return
		}
	}

	var text string
	if req.Text != nil {
		text = *req.Text
	}

	msg, err := h.board.Create(r.Context(), text)
	if err != nil {
		if errors.Is(err, board.ErrValidation) {
			writeError(w, h.logger, http.StatusBadRequest, validationMessage(err))
			return
		}

		h.logger.Error("Save failed", slog.String("error", err.Error()))
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save message")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, saveResponse{
		Saved:   true,
		ID:      msg.ID,
		Message: msg,
	})
}

// errTrailingData marks a body holding more than one JSON value
var errTrailingData = errors.New("unexpected data after JSON body")

// decodeSingle decodes exactly one JSON value from body. Trailing whitespace
// is allowed; anything else after the value is an error.
func decodeSingle(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}

	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingData
	}
}

func validationMessage(err error) string {
	if errors.Is(err, message.ErrTextTooLong) {
		return message.ErrTextTooLong.Error()
	}
	return message.ErrEmptyText.Error()
}

// ListMessages returns every message, newest first
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.board.List(r.Context())
	if err != nil {
		h.logger.Error("Get messages failed", slog.String("error", err.Error()))
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve messages")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, msgs)
}

// DeleteMessage removes the message named by the {id} path parameter
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.board.Delete(r.Context(), id)
	switch {
	case errors.Is(err, board.ErrNotFound):
		writeError(w, h.logger, http.StatusNotFound, board.ErrNotFound.Error())
		return
	case err != nil:
		h.logger.Error("Delete failed",
			slog.String("id", id),
			slog.String("error", err.Error()))
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete message")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, deleteResponse{
		Deleted: true,
		ID:      id,
	})
}

// LiveFeed upgrades the connection and subscribes it to board events
func (h *Handler) LiveFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection",
			slog.String("error", err.Error()))
		return
	}

	c := client.New(h.feed, conn, h.logger)
	h.feed.Subscribe(c)
	c.Start()

	h.logger.Info("new live feed subscriber",
		slog.String("subscriberId", c.ID()),
		slog.String("remoteAddr", r.RemoteAddr))
}
