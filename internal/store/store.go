// Package store defines the contract with the persistent member/room store.
// The relational implementation lives outside this service; the realtime core
// only consumes lookups, status updates, and room membership.
package store

import (
	"context"
	"errors"
)

var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidPassword = errors.New("invalid password")
)

type MemberStatus string

const (
	StatusOnline  MemberStatus = "ONLINE"
	StatusOffline MemberStatus = "OFFLINE"
)

// Member is a registered user identity, uniquely keyed by an id and a uuid.
type Member struct {
	ID       string       `json:"id" msgpack:"id"`
	UUID     string       `json:"uuid" msgpack:"uuid"`
	Nickname string       `json:"nickname" msgpack:"nickname"`
	Status   MemberStatus `json:"status" msgpack:"status"`
}

type MemberStore interface {
	// MemberByUUID returns the canonical member record.
	MemberByUUID(ctx context.Context, uuid string) (Member, error)

	// Authenticate checks a member's credentials and returns the record on success.
	Authenticate(ctx context.Context, id, password string) (Member, error)

	// UpdateStatus sets a single member's presence status.
	UpdateStatus(ctx context.Context, uuid string, status MemberStatus) error

	// ResetAllStatuses sets every member's status, used once at process start.
	ResetAllStatuses(ctx context.Context, status MemberStatus) error
}

type RoomStore interface {
	// RoomMemberUUIDs returns the uuids of a room's current members.
	RoomMemberUUIDs(ctx context.Context, roomUUID string) ([]string, error)
}
