package models

// Message types accepted by the service. Status messages are generated by
// the server (join/leave announcements), never by clients.
const (
	TypePublic  = "message"
	TypePrivate = "private_message"
	TypeStatus  = "status"
)

// Broadcast is the reserved recipient meaning "visible to all".
const Broadcast = "Todos"

type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	// Wall-clock stamp captured at write time. Ordering comes from the
	// store's insertion order, not from this field.
	Time string `json:"time"`
}

// VisibleTo reports whether viewer may read the message. Public and status
// messages are visible to everyone; a private message only to its sender
// and its recipient.
func (m Message) VisibleTo(viewer string) bool {
	if m.Type != TypePrivate {
		return true
	}
	return viewer == m.From || viewer == m.To
}
