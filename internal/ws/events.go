package ws

// Event is one tag from the closed WebSocket event enumeration. Only typing
// and typingStop are accepted from clients; the rest are outbound only,
// pushed by the CRUD layer through the dispatcher.
type Event string

const (
	EventNewMessage    Event = "newMessage"
	EventMessageUpdate Event = "messageUpdate"
	EventMessageRead   Event = "messageRead"
	EventMessageEdit   Event = "messageEdit"
	EventMessageDelete Event = "messageDelete"
	EventTyping        Event = "typing"
	EventTypingStop    Event = "typingStop"
	EventNewRoom       Event = "newRoom"
	EventRoomUpdate    Event = "roomUpdate"
)

// Valid reports whether the tag belongs to the enumeration.
func (e Event) Valid() bool {
	switch e {
	case EventNewMessage, EventMessageUpdate, EventMessageRead,
		EventMessageEdit, EventMessageDelete, EventTyping,
		EventTypingStop, EventNewRoom, EventRoomUpdate:
		return true
	}
	return false
}
