package ws_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottons-kr/appplechat-api/internal/registry"
	"github.com/cottons-kr/appplechat-api/internal/ws"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

// captureChannel records every frame it receives, safe for concurrent sends.
type captureChannel struct {
	mu     sync.Mutex
	frames [][]byte
}

func (c *captureChannel) Send(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frame)
}

func (c *captureChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *captureChannel) last() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

func TestDispatchTargeting(t *testing.T) {
	reg := registry.New(newTestLogger())
	d := ws.NewDispatcher(newTestLogger(), reg)

	ch1, ch3 := &captureChannel{}, &captureChannel{}
	reg.Register(uuid.New(), "m1", ch1)
	reg.Register(uuid.New(), "m3", ch3)

	// m2 has no live connection and must be skipped without error.
	err := d.Dispatch(ws.EventNewMessage, map[string]string{"content": "hi"}, []string{"m1", "m2", "m3"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return ch1.count() == 1 && ch3.count() == 1
	}, time.Second, 5*time.Millisecond)

	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ch1.last(), &envelope))
	assert.Equal(t, "newMessage", envelope.Event)
	assert.JSONEq(t, `{"content":"hi"}`, string(envelope.Data))
}

func TestDispatchNoTargets(t *testing.T) {
	reg := registry.New(newTestLogger())
	d := ws.NewDispatcher(newTestLogger(), reg)

	require.NoError(t, d.Dispatch(ws.EventRoomUpdate, nil, nil))
	require.NoError(t, d.Dispatch(ws.EventRoomUpdate, nil, []string{"nobody"}))
}

func TestDispatchSlowRecipientDoesNotBlockOthers(t *testing.T) {
	reg := registry.New(newTestLogger())
	d := ws.NewDispatcher(newTestLogger(), reg)

	slow := &blockingChannel{release: make(chan struct{})}
	fast := &captureChannel{}
	reg.Register(uuid.New(), "slow", slow)
	reg.Register(uuid.New(), "fast", fast)

	require.NoError(t, d.Dispatch(ws.EventNewRoom, map[string]string{"name": "r"}, []string{"slow", "fast"}))

	require.Eventually(t, func() bool {
		return fast.count() == 1
	}, time.Second, 5*time.Millisecond, "fast recipient must be delivered while the slow one is stuck")

	close(slow.release)
}

type blockingChannel struct {
	release chan struct{}
}

func (b *blockingChannel) Send(_ []byte) {
	<-b.release
}
