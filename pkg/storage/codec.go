package storage

import (
	"encoding/json"

	"github.com/epw80/message-board/pkg/message"
)

var emptyCollection = []byte("[]")

// encodeCollection renders msgs as a pretty-printed JSON array
func encodeCollection(msgs []message.Message) ([]byte, error) {
	if msgs == nil {
		msgs = []message.Message{}
	}
	return json.MarshalIndent(msgs, "", "  ")
}

func decodeCollection(data []byte) ([]message.Message, error) {
	var msgs []message.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	return msgs, nil
}
