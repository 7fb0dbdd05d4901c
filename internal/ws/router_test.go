package ws_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottons-kr/appplechat-api/internal/registry"
	"github.com/cottons-kr/appplechat-api/internal/store"
	"github.com/cottons-kr/appplechat-api/internal/ws"
)

// testRelay wires a router with a seeded room {sender, x, y} and live
// channels for all three members.
func testRelay(t *testing.T) (*ws.Router, *captureChannel, *captureChannel, *captureChannel) {
	t.Helper()
	logger := newTestLogger()

	members := store.NewInMemoryStore(logger)
	members.AddRoom("room-1", "sender", "x", "y")

	reg := registry.New(logger)
	sender, chX, chY := &captureChannel{}, &captureChannel{}, &captureChannel{}
	reg.Register(uuid.New(), "sender", sender)
	reg.Register(uuid.New(), "x", chX)
	reg.Register(uuid.New(), "y", chY)

	router := ws.NewRouter(logger, members, ws.NewDispatcher(logger, reg))
	return router, sender, chX, chY
}

func TestTypingRelayExcludesSender(t *testing.T) {
	router, sender, chX, chY := testRelay(t)

	frame := []byte(`{"event":"typing","data":{"uuid":"sender","roomId":"room-1"}}`)
	router.HandleMessage(context.Background(), uuid.New(), frame)

	require.Eventually(t, func() bool {
		return chX.count() == 1 && chY.count() == 1
	}, time.Second, 5*time.Millisecond)

	// The relay forwards the envelope unchanged.
	assert.JSONEq(t, string(frame), string(chX.last()))
	assert.JSONEq(t, string(frame), string(chY.last()))
	assert.Zero(t, sender.count(), "typing must never echo back to the sender")
}

func TestTypingStopRelay(t *testing.T) {
	router, _, chX, chY := testRelay(t)

	frame := []byte(`{"event":"typingStop","data":{"uuid":"sender","roomId":"room-1"}}`)
	router.HandleMessage(context.Background(), uuid.New(), frame)

	require.Eventually(t, func() bool {
		return chX.count() == 1 && chY.count() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestMalformedFramesAreDropped(t *testing.T) {
	cases := map[string]string{
		"invalid json":           `{"event": typing}`,
		"plain text":             `hello`,
		"missing event":          `{"data":{"uuid":"sender","roomId":"room-1"}}`,
		"missing data":           `{"event":"typing"}`,
		"extra envelope field":   `{"event":"typing","data":{"uuid":"sender","roomId":"room-1"},"hop":1}`,
		"payload missing roomId": `{"event":"typing","data":{"uuid":"sender"}}`,
		"payload extra field":    `{"event":"typing","data":{"uuid":"sender","roomId":"room-1","z":1}}`,
		"unknown room":           `{"event":"typing","data":{"uuid":"sender","roomId":"no-such-room"}}`,
	}
	for name, frame := range cases {
		t.Run(name, func(t *testing.T) {
			router, sender, chX, chY := testRelay(t)
			router.HandleMessage(context.Background(), uuid.New(), []byte(frame))

			time.Sleep(30 * time.Millisecond)
			assert.Zero(t, sender.count())
			assert.Zero(t, chX.count())
			assert.Zero(t, chY.count())
		})
	}
}

func TestUnhandledEventIsNoOp(t *testing.T) {
	router, sender, chX, chY := testRelay(t)

	// Well-formed envelope with an outbound-only tag: ignored, not an error.
	frame := []byte(`{"event":"newMessage","data":{"content":"hi"}}`)
	router.HandleMessage(context.Background(), uuid.New(), frame)

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, sender.count())
	assert.Zero(t, chX.count())
	assert.Zero(t, chY.count())
}
