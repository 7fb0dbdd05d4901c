// Package presence synchronizes a member's derived ONLINE/OFFLINE status to
// the persistent store. The status is never cached here; the registry is the
// source of truth for who is online.
package presence

import (
	"context"
	"log/slog"

	"github.com/cottons-kr/appplechat-api/internal/store"
)

type Tracker struct {
	members store.MemberStore
	logger  *slog.Logger
}

func NewTracker(logger *slog.Logger, members store.MemberStore) *Tracker {
	return &Tracker{
		members: members,
		logger:  logger.With(slog.String("component", "presence")),
	}
}

// OnConnect marks the member ONLINE after a successful registration.
func (t *Tracker) OnConnect(ctx context.Context, memberUUID string) {
	if err := t.members.UpdateStatus(ctx, memberUUID, store.StatusOnline); err != nil {
		t.logger.Error("Failed to set member online",
			slog.String("memberUUID", memberUUID), slog.Any("error", err))
	}
}

// OnDisconnect marks the member OFFLINE. It must only run when the registry
// reports an actual cleanup, never for a stale or duplicate close.
func (t *Tracker) OnDisconnect(ctx context.Context, memberUUID string) {
	if err := t.members.UpdateStatus(ctx, memberUUID, store.StatusOffline); err != nil {
		t.logger.Error("Failed to set member offline",
			slog.String("memberUUID", memberUUID), slog.Any("error", err))
	}
}

// OnProcessStart resets every member to OFFLINE. Any ONLINE status left over
// from an unclean shutdown is stale and corrected once at boot, before the
// first connection is accepted.
func (t *Tracker) OnProcessStart(ctx context.Context) error {
	if err := t.members.ResetAllStatuses(ctx, store.StatusOffline); err != nil {
		t.logger.Error("Failed to reset member statuses", slog.Any("error", err))
		return err
	}
	t.logger.Info("Reset all member statuses to offline")
	return nil
}
