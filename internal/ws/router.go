// Package ws implements the realtime protocol: the event enumeration, the
// frame envelope, inbound routing, and the broadcast dispatcher.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cottons-kr/appplechat-api/internal/store"
)

// Router validates inbound frames and routes recognized events to handlers.
// The protocol has no NACK channel, so every per-frame failure is logged and
// the frame silently dropped; the connection stays open.
type Router struct {
	rooms      store.RoomStore
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewRouter(logger *slog.Logger, rooms store.RoomStore, dispatcher *Dispatcher) *Router {
	return &Router{
		rooms:      rooms,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "ws_router")),
	}
}

// HandleMessage processes one inbound frame from an authorized connection.
func (r *Router) HandleMessage(ctx context.Context, connID uuid.UUID, frame []byte) {
	event, data, ok := ParseEnvelope(frame)
	if !ok {
		r.logger.Warn("Invalid message format", slog.String("connID", connID.String()))
		return
	}

	switch event {
	case EventTyping, EventTypingStop:
		r.handleTyping(ctx, connID, event, data)
	default:
		// Well-formed but currently without an inbound handler; ignored so
		// new outbound-only tags never break older clients.
		r.logger.Debug("Ignoring event without inbound handler",
			slog.String("event", string(event)), slog.String("connID", connID.String()))
	}
}

// handleTyping relays a typing indicator to every member of the room except
// the sender named in the payload.
func (r *Router) handleTyping(ctx context.Context, connID uuid.UUID, event Event, data json.RawMessage) {
	payload, ok := ParseTypingPayload(data)
	if !ok {
		r.logger.Warn("Invalid data format", slog.String("connID", connID.String()))
		return
	}

	memberUUIDs, err := r.rooms.RoomMemberUUIDs(ctx, payload.RoomID)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			r.logger.Warn("Room not found",
				slog.String("connID", connID.String()), slog.String("roomID", payload.RoomID))
			return
		}
		r.logger.Error("Failed to load room members",
			slog.String("roomID", payload.RoomID), slog.Any("error", err))
		return
	}

	targets := make([]string, 0, len(memberUUIDs))
	for _, memberUUID := range memberUUIDs {
		if memberUUID != payload.UUID {
			targets = append(targets, memberUUID)
		}
	}
	if err := r.dispatcher.Dispatch(event, data, targets); err != nil {
		r.logger.Error("Failed to relay typing event", slog.Any("error", err))
	}
}
