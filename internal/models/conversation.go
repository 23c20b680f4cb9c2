package models

import (
	"sync"
	"time"
)

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is a single message in a conversation timeline.
// Turns are immutable once appended.
type ConversationTurn struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Conversation holds the state of one user session: the ordered turn
// history plus the ephemeral context that feeds the next turn (active
// product filter, last image analysis, last location and weather snapshot).
//
// A session processes one turn at a time: callers hold the conversation
// lock for the duration of a pipeline run, so a second submission queues
// behind the first instead of interleaving.
type Conversation struct {
	mu sync.Mutex

	ID     string
	UserID string

	Turns []*ConversationTurn

	// Ephemeral session context
	ProductFilter string
	ImageAnalysis string
	Location      *UserSettings
	Weather       *WeatherSnapshot
}

// NewConversation creates an empty conversation for a user with the
// product filter open to all products.
func NewConversation(id, userID string) *Conversation {
	return &Conversation{
		ID:            id,
		UserID:        userID,
		ProductFilter: FilterAll,
	}
}

// Lock serializes turn processing for this session.
func (c *Conversation) Lock() { c.mu.Lock() }

// Unlock releases the session for the next turn.
func (c *Conversation) Unlock() { c.mu.Unlock() }

// Append adds a turn to the history.
func (c *Conversation) Append(turn *ConversationTurn) {
	c.Turns = append(c.Turns, turn)
}

// Window returns the last w turns excluding the most recent entry, which
// is the still-unanswered in-flight turn. If fewer than w+1 turns exist,
// all prior turns are returned. Empty input yields an empty result.
func (c *Conversation) Window(w int) []*ConversationTurn {
	if w <= 0 || len(c.Turns) <= 1 {
		return nil
	}

	end := len(c.Turns) - 1
	start := end - w
	if start < 0 {
		start = 0
	}

	return c.Turns[start:end]
}

// Reset clears the turn history and the ephemeral context, keeping the
// session identity and product filter. Used by the "start over" command.
func (c *Conversation) Reset() {
	c.Turns = nil
	c.ImageAnalysis = ""
	c.Weather = nil
}
