package chat

import (
	"strings"
	"time"

	"github.com/joshua-hq/warroom/pkg/domain/types"
)

// Message is a live chat entry. Immutable after creation; ID and
// CreatedAt are assigned by the backing store.
type Message struct {
	ID         types.MessageID  `firestore:"-" json:"id"`
	AuthorID   types.IdentityID `firestore:"author_id" json:"author_id"`
	SenderName string           `firestore:"sender_name" json:"sender_name"`
	Text       string           `firestore:"text" json:"text"`
	CreatedAt  time.Time        `firestore:"created_at,serverTimestamp" json:"created_at"`
}

// New builds a message for append. Returns nil when the text trims to
// empty: blank messages are a silent no-op, not an error.
func New(authorID types.IdentityID, senderName, text string) *Message {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &Message{
		AuthorID:   authorID,
		SenderName: senderName,
		Text:       text,
	}
}
