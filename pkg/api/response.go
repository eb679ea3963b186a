package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/epw80/message-board/pkg/message"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	MessagesCount int    `json:"messagesCount"`
}

type saveRequest struct {
	Text *string `json:"text"`
}

type saveResponse struct {
	Saved   bool             `json:"saved"`
	ID      string           `json:"id"`
	Message *message.Message `json:"message"`
}

type deleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, errorResponse{Error: msg})
}
