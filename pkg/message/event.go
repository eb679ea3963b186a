package message

import "encoding/json"

// EventType identifies a live-feed event
type EventType string

const (
	EventCreated EventType = "message.created"
	EventDeleted EventType = "message.deleted"
)

// Event is pushed to live-feed subscribers after a successful mutation
type Event struct {
	Type    EventType `json:"type"`
	ID      string    `json:"id,omitempty"`
	Message *Message  `json:"message,omitempty"`
}

// CreatedEvent announces a newly saved message
func CreatedEvent(m Message) Event {
	return Event{Type: EventCreated, ID: m.ID, Message: &m}
}

// DeletedEvent announces the removal of the message with the given id
func DeletedEvent(id string) Event {
	return Event{Type: EventDeleted, ID: id}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
