package domain

import "time"

const MaxMessageLength = 500

type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Content    string
	CreatedAt  time.Time
	Sender     UserSummary
	Receiver   UserSummary
}

// PartnerOf returns the other participant of the message from userID's side.
func (m *Message) PartnerOf(userID int64) int64 {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

type Conversation struct {
	Partner     UserSummary
	LastMessage *Message
}
