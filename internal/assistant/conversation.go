package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chrisdamba/pupulse/internal/models"
)

// Turn is one exchanged message in a conversation.
type Turn struct {
	ID     string
	Role   string
	Text   string
	SentAt time.Time
}

// CatalogSnapshot supplies the catalog context for each question.
type CatalogSnapshot func() ([]models.MenuItem, []models.Restaurant)

// Conversation keeps an ordered transcript and asks the assistant with the
// full history each time. Concurrent Ask calls are answered one at a time.
type Conversation struct {
	ID string

	assistant *Assistant
	catalog   CatalogSnapshot
	now       func() time.Time

	askMu sync.Mutex
	mu    sync.Mutex
	turns []Turn
}

func NewConversation(a *Assistant, catalog CatalogSnapshot) *Conversation {
	return &Conversation{
		ID:        uuid.NewString(),
		assistant: a,
		catalog:   catalog,
		now:       time.Now,
	}
}

// Ask records the question and the reply. The reply is recorded even when it
// is a fallback so the transcript keeps alternating.
func (c *Conversation) Ask(ctx context.Context, question string) Turn {
	c.askMu.Lock()
	defer c.askMu.Unlock()

	c.mu.Lock()
	history := make([]string, len(c.turns))
	for i, t := range c.turns {
		history[i] = t.Text
	}
	c.mu.Unlock()

	items, restaurants := c.catalog()
	reply := c.assistant.Reply(ctx, question, items, restaurants, history)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns,
		Turn{ID: uuid.NewString(), Role: "user", Text: question, SentAt: c.now()},
		Turn{ID: uuid.NewString(), Role: "model", Text: reply, SentAt: c.now()},
	)
	return c.turns[len(c.turns)-1]
}

func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}
