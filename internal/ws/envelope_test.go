package ws_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottons-kr/appplechat-api/internal/ws"
)

func TestParseEnvelope(t *testing.T) {
	event, data, ok := ws.ParseEnvelope([]byte(`{"event":"typing","data":{"uuid":"u","roomId":"r"}}`))
	require.True(t, ok)
	assert.Equal(t, ws.EventTyping, event)
	assert.JSONEq(t, `{"uuid":"u","roomId":"r"}`, string(data))
}

func TestParseEnvelopeNullData(t *testing.T) {
	event, data, ok := ws.ParseEnvelope([]byte(`{"event":"messageRead","data":null}`))
	require.True(t, ok)
	assert.Equal(t, ws.EventMessageRead, event)
	assert.Equal(t, "null", string(data))
}

func TestParseEnvelopeRejections(t *testing.T) {
	cases := map[string]string{
		"not json":            `this is not json`,
		"not an object":       `["event","data"]`,
		"missing event":       `{"data":{}}`,
		"missing data":        `{"event":"typing"}`,
		"extra property":      `{"event":"typing","data":{},"extra":1}`,
		"event not a string":  `{"event":3,"data":{}}`,
		"event outside enum":  `{"event":"selfDestruct","data":{}}`,
	}
	for name, frame := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, ok := ws.ParseEnvelope([]byte(frame))
			assert.False(t, ok)
		})
	}
}

func TestParseTypingPayload(t *testing.T) {
	payload, ok := ws.ParseTypingPayload([]byte(`{"uuid":"sender","roomId":"room"}`))
	require.True(t, ok)
	assert.Equal(t, "sender", payload.UUID)
	assert.Equal(t, "room", payload.RoomID)
}

func TestParseTypingPayloadRejections(t *testing.T) {
	cases := map[string]string{
		"missing roomId":   `{"uuid":"sender"}`,
		"missing uuid":     `{"roomId":"room"}`,
		"extra property":   `{"uuid":"s","roomId":"r","x":1}`,
		"non-string value": `{"uuid":"s","roomId":7}`,
		"not an object":    `"typing"`,
		"null":             `null`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := ws.ParseTypingPayload([]byte(data))
			assert.False(t, ok)
		})
	}
}
