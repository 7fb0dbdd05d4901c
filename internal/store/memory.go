package store

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"sync"
)

// InMemoryStore is a process-local MemberStore/RoomStore used by the demo
// binary and by tests in place of the external relational store.
type InMemoryStore struct {
	mu        sync.RWMutex
	members   map[string]*Member          // keyed by uuid
	passwords map[string]string           // member id -> password
	byID      map[string]string           // member id -> uuid
	rooms     map[string]map[string]bool  // room uuid -> set of member uuids

	logger *slog.Logger
}

func NewInMemoryStore(logger *slog.Logger) *InMemoryStore {
	return &InMemoryStore{
		members:   make(map[string]*Member),
		passwords: make(map[string]string),
		byID:      make(map[string]string),
		rooms:     make(map[string]map[string]bool),
		logger:    logger.With(slog.String("component", "store_inmemory")),
	}
}

// compile-time checks to ensure InMemoryStore implements both contracts.
var (
	_ MemberStore = (*InMemoryStore)(nil)
	_ RoomStore   = (*InMemoryStore)(nil)
)

// AddMember seeds a member record. Not part of the MemberStore contract.
func (s *InMemoryStore) AddMember(m Member, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := m
	if copied.Status == "" {
		copied.Status = StatusOffline
	}
	s.members[m.UUID] = &copied
	s.byID[m.ID] = m.UUID
	s.passwords[m.ID] = password
}

// AddRoom seeds a room with its member uuids. Not part of the RoomStore contract.
func (s *InMemoryStore) AddRoom(roomUUID string, memberUUIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make(map[string]bool, len(memberUUIDs))
	for _, uuid := range memberUUIDs {
		members[uuid] = true
	}
	s.rooms[roomUUID] = members
}

func (s *InMemoryStore) MemberByUUID(_ context.Context, uuid string) (Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[uuid]
	if !ok {
		return Member{}, ErrMemberNotFound
	}
	return *m, nil
}

func (s *InMemoryStore) Authenticate(_ context.Context, id, password string) (Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uuid, ok := s.byID[id]
	if !ok {
		return Member{}, ErrMemberNotFound
	}
	stored := s.passwords[id]
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return Member{}, ErrInvalidPassword
	}
	return *s.members[uuid], nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, uuid string, status MemberStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[uuid]
	if !ok {
		return ErrMemberNotFound
	}
	m.Status = status
	s.logger.Debug("Member status updated", slog.String("uuid", uuid), slog.String("status", string(status)))
	return nil
}

func (s *InMemoryStore) ResetAllStatuses(_ context.Context, status MemberStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		m.Status = status
	}
	return nil
}

func (s *InMemoryStore) RoomMemberUUIDs(_ context.Context, roomUUID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members, ok := s.rooms[roomUUID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	uuids := make([]string, 0, len(members))
	for uuid := range members {
		uuids = append(uuids, uuid)
	}
	return uuids, nil
}
