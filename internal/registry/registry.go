// Package registry tracks the process-wide mapping between authenticated
// members and their live WebSocket connections.
package registry

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Channel is the send-side of a live connection. The registry holds
// non-owning references; the transport layer owns the connection itself.
type Channel interface {
	Send(frame []byte)
}

// Registry keeps three indices under one lock: member uuid -> channel,
// connection id -> member uuid, and the set of connections that completed
// the handshake. Every mutation and composite check runs atomically.
type Registry struct {
	mu          sync.Mutex
	memberConns map[string]connEntry
	connMembers map[uuid.UUID]string
	authorized  map[uuid.UUID]struct{}

	logger *slog.Logger
}

type connEntry struct {
	connID  uuid.UUID
	channel Channel
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		memberConns: make(map[string]connEntry),
		connMembers: make(map[uuid.UUID]string),
		authorized:  make(map[uuid.UUID]struct{}),
		logger:      logger.With(slog.String("component", "registry")),
	}
}

// Register binds a connection to a member. A member authenticating again
// silently replaces the previous mapping (last writer wins); the superseded
// channel stays open but is no longer a broadcast target.
func (r *Registry) Register(connID uuid.UUID, memberUUID string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.memberConns[memberUUID]; exists {
		r.logger.Debug("Replacing existing connection for member",
			slog.String("memberUUID", memberUUID),
			slog.String("oldConnID", old.connID.String()),
			slog.String("newConnID", connID.String()),
		)
	}
	r.memberConns[memberUUID] = connEntry{connID: connID, channel: ch}
	r.connMembers[connID] = memberUUID
}

// Unregister removes a closing connection from all indices. The member
// mapping is evicted only while it still points at this connection, so a
// stale close never removes a newer connection for the same member. It
// returns the member uuid when a logical disconnect actually happened,
// letting the caller trigger a presence update exactly once.
func (r *Registry) Unregister(connID uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	memberUUID, ok := r.connMembers[connID]
	delete(r.connMembers, connID)
	delete(r.authorized, connID)
	if !ok {
		return "", false
	}

	entry, exists := r.memberConns[memberUUID]
	if !exists || entry.connID != connID {
		// A newer connection took over this member.
		return "", false
	}
	delete(r.memberConns, memberUUID)
	r.logger.Debug("Member connection removed", slog.String("memberUUID", memberUUID))
	return memberUUID, true
}

// Lookup resolves a member to their live channel, if any.
func (r *Registry) Lookup(memberUUID string) (Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.memberConns[memberUUID]
	if !ok {
		return nil, false
	}
	return entry.channel, true
}

// MarkAuthorized records that a connection completed the handshake.
func (r *Registry) MarkAuthorized(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorized[connID] = struct{}{}
}

// IsAuthorized reports whether a connection completed the handshake.
func (r *Registry) IsAuthorized(connID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.authorized[connID]
	return ok
}
