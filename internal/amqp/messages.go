package amqp

import (
	"encoding/json"
	"time"
)

// DocumentSyncMessage signals that the local financial document changed and
// should be mirrored to the remote store. It intentionally carries no
// payload: the worker re-loads the document from local storage, so the
// mirror always ships the latest state even when messages are delayed or
// coalesced.
type DocumentSyncMessage struct {
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDocumentSyncMessage creates a sync message for the given mutation.
func NewDocumentSyncMessage(operation string) *DocumentSyncMessage {
	return &DocumentSyncMessage{
		Operation: operation,
		Timestamp: time.Now(),
	}
}

// ToJSON serializes the message for publishing
func (m *DocumentSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DocumentSyncMessageFromJSON deserializes a message from a delivery body
func DocumentSyncMessageFromJSON(data []byte) (*DocumentSyncMessage, error) {
	var msg DocumentSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
