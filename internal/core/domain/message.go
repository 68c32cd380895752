package domain

import "time"

// Message is a single chat message inside a conversation.
type Message struct {
	ID             string    `json:"id"              bson:"_id"`
	ConversationID string    `json:"conversation_id" bson:"conversation_id"`
	SenderID       string    `json:"sender_id"       bson:"sender_id"`
	Content        string    `json:"content"         bson:"content"`
	Read           bool      `json:"read"            bson:"read"`
	CreatedAt      time.Time `json:"created_at"      bson:"created_at"`
}

// Conversation groups messages between participants.
type Conversation struct {
	ID           string    `json:"id"           bson:"_id"`
	Participants []string  `json:"participants" bson:"participants"`
	JobID        string    `json:"job_id,omitempty" bson:"job_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"   bson:"updated_at"`
}

// HasParticipant reports whether userID takes part in c.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// ChangeOp is the kind of row change announced on the change feed.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// Change is a notification that a record in Table changed. Key scopes the
// change (a conversation ID for messages); receivers re-fetch on each change.
type Change struct {
	Table string    `json:"table"`
	Key   string    `json:"key"`
	Op    ChangeOp  `json:"op"`
	At    time.Time `json:"at"`
}
