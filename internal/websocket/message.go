package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewEventMessage marshals an activity event into a broadcast-ready message.
func NewEventMessage(payload interface{}) []byte {
	data, err := json.Marshal(Message{Action: "event", Payload: payload})
	if err != nil {
		return nil
	}
	return data
}

// NewErrorMessage marshals an error notice for a single client.
func NewErrorMessage(text string) []byte {
	data, err := json.Marshal(Message{Action: "error", Payload: text})
	if err != nil {
		return nil
	}
	return data
}
