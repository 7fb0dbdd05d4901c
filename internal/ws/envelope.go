package ws

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Envelope is the frame shape shared by both directions:
// {"event": "<tag>", "data": <event-specific>}.
type Envelope struct {
	Event Event `json:"event"`
	Data  any   `json:"data"`
}

// ParseEnvelope validates a raw inbound frame against the envelope shape.
// The frame must be a JSON object holding exactly "event" (a tag from the
// enumeration) and "data" (any JSON value, null included). It returns the
// event and the raw data document, or ok=false for a non-conforming frame.
func ParseEnvelope(frame []byte) (Event, json.RawMessage, bool) {
	if !gjson.ValidBytes(frame) {
		return "", nil, false
	}
	root := gjson.ParseBytes(frame)
	if !root.IsObject() {
		return "", nil, false
	}

	extra := false
	root.ForEach(func(key, _ gjson.Result) bool {
		if key.Str != "event" && key.Str != "data" {
			extra = true
			return false
		}
		return true
	})
	if extra {
		return "", nil, false
	}

	eventValue := root.Get("event")
	if eventValue.Type != gjson.String {
		return "", nil, false
	}
	event := Event(eventValue.Str)
	if !event.Valid() {
		return "", nil, false
	}

	dataValue := root.Get("data")
	if !dataValue.Exists() {
		return "", nil, false
	}
	return event, json.RawMessage(dataValue.Raw), true
}

// TypingPayload is the client payload for typing/typingStop frames.
type TypingPayload struct {
	UUID   string `json:"uuid"`
	RoomID string `json:"roomId"`
}

// ParseTypingPayload validates the typing payload shape: an object holding
// exactly the uuid and roomId strings.
func ParseTypingPayload(data json.RawMessage) (TypingPayload, bool) {
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return TypingPayload{}, false
	}

	extra := false
	root.ForEach(func(key, _ gjson.Result) bool {
		if key.Str != "uuid" && key.Str != "roomId" {
			extra = true
			return false
		}
		return true
	})
	if extra {
		return TypingPayload{}, false
	}

	uuidValue := root.Get("uuid")
	roomValue := root.Get("roomId")
	if uuidValue.Type != gjson.String || roomValue.Type != gjson.String {
		return TypingPayload{}, false
	}
	return TypingPayload{UUID: uuidValue.Str, RoomID: roomValue.Str}, true
}
