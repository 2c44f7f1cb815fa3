// Package assistant answers free-text questions about the campus catalog
// through a language model. Failures never surface to the caller; a canned
// reply is returned instead.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chrisdamba/pupulse/internal/models"
)

const (
	MissingKeyReply = "I'm sorry, I cannot connect to the brain right now (Missing API Key). But I recommend the Chicken Momos!"
	FallbackReply   = "I'm having a bit of trouble connecting to the network. Try browsing the 'Popular' section!"
)

type Assistant struct {
	generator Generator
	logger    *slog.Logger
}

func New(generator Generator, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{generator: generator, logger: logger}
}

// Reply answers message given the current catalog and the prior transcript,
// whose entries alternate user and model starting with the user.
func (a *Assistant) Reply(ctx context.Context, message string, items []models.MenuItem, restaurants []models.Restaurant, history []string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("assistant panicked", "panic", r)
			reply = FallbackReply
		}
	}()

	if a.generator == nil {
		return MissingKeyReply
	}

	text, err := a.generator.Generate(ctx, SystemInstructionFor(items, restaurants), historyMessages(history), message)
	if errors.Is(err, ErrMissingAPIKey) {
		return MissingKeyReply
	}
	if err != nil {
		a.logger.Error("assistant request failed", "error", err)
		return FallbackReply
	}
	return text
}

func historyMessages(history []string) []Message {
	out := make([]Message, len(history))
	for i, text := range history {
		role := "user"
		if i%2 == 1 {
			role = "model"
		}
		out[i] = Message{Role: role, Text: text}
	}
	return out
}

// SystemInstructionFor builds the instruction that grounds the model in the
// restaurants and menu currently on offer.
func SystemInstructionFor(items []models.MenuItem, restaurants []models.Restaurant) string {
	names := make(map[string]string, len(restaurants))
	var rb strings.Builder
	for _, r := range restaurants {
		names[r.ID] = r.Name
		fmt.Fprintf(&rb, "- %s (%s) located at %s\n", r.Name, r.Cuisine, r.Location)
	}

	var mb strings.Builder
	for _, it := range items {
		fmt.Fprintf(&mb, "- %s (%s): ₹%d at %s\n", it.Name, it.Category, it.Price, names[it.RestaurantID])
	}

	return fmt.Sprintf(`You are "Pulse AI", a helpful campus assistant for the PU Pulse app.
Your goal is to help students find food or stationery to order.

Here is the list of available Restaurants on campus:
%s
Here is the detailed Menu:
%s
Rules:
1. Only recommend items that are on the menu.
2. Keep responses short, friendly, and helpful.
3. If a user asks for something not on the menu, suggest the closest alternative.
4. If a user asks about stationery, guide them to the %s items.
5. Do not use markdown formatting like bold or italics excessively.
`, rb.String(), mb.String(), models.StationeryDepotName)
}
