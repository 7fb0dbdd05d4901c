package store_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottons-kr/appplechat-api/internal/store"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

func TestAuthenticate(t *testing.T) {
	s := store.NewInMemoryStore(newTestLogger())
	s.AddMember(store.Member{ID: "alice", UUID: "uuid-alice", Nickname: "Alice"}, "secret")

	member, err := s.Authenticate(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "uuid-alice", member.UUID)
	assert.Equal(t, store.StatusOffline, member.Status)

	_, err = s.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, store.ErrInvalidPassword)

	_, err = s.Authenticate(context.Background(), "nobody", "secret")
	assert.ErrorIs(t, err, store.ErrMemberNotFound)
}

func TestMemberByUUID(t *testing.T) {
	s := store.NewInMemoryStore(newTestLogger())
	s.AddMember(store.Member{ID: "alice", UUID: "uuid-alice"}, "pw")

	member, err := s.MemberByUUID(context.Background(), "uuid-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", member.ID)

	_, err = s.MemberByUUID(context.Background(), "uuid-ghost")
	assert.ErrorIs(t, err, store.ErrMemberNotFound)
}

func TestRoomMemberUUIDs(t *testing.T) {
	s := store.NewInMemoryStore(newTestLogger())
	s.AddRoom("room-1", "a", "b")

	uuids, err := s.RoomMemberUUIDs(context.Background(), "room-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, uuids)

	_, err = s.RoomMemberUUIDs(context.Background(), "room-2")
	assert.ErrorIs(t, err, store.ErrRoomNotFound)
}
