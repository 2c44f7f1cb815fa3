package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/pupulse/internal/assistant"
	"github.com/chrisdamba/pupulse/internal/models"
)

func newChatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask Pulse AI what to order",
		Long: `chat talks to the Pulse AI assistant with the current catalog as context.
With a question as arguments it answers once; otherwise it reads questions
from stdin until "exit".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSession(cmd, a)
			if err != nil {
				return err
			}
			cv, admin := store.Customer(), store.Admin()

			gen := assistant.NewGeminiClient(a.cfg.Assistant.APIKey, a.cfg.Assistant.Model,
				a.cfg.Assistant.BaseURL, a.cfg.Assistant.Timeout, a.logger)
			conv := assistant.NewConversation(assistant.New(gen, a.logger),
				func() ([]models.MenuItem, []models.Restaurant) {
					return admin.MenuItems(), cv.Restaurants()
				})
			a.logger.Debug("chat started", "conversation", conv.ID)

			out := cmd.OutOrStdout()
			if len(args) > 0 {
				fmt.Fprintln(out, conv.Ask(cmd.Context(), strings.Join(args, " ")).Text)
				return nil
			}

			fmt.Fprintln(out, "Hi! I'm Pulse AI. Ask me what's good today (type exit to leave).")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "you> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					break
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "" {
					continue
				}
				if question == "exit" || question == "quit" {
					break
				}
				fmt.Fprintf(out, "pulse> %s\n", conv.Ask(cmd.Context(), question).Text)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().String("api-key", "", "Gemini API key (or PUPULSE_ASSISTANT_API_KEY)")
	cmd.Flags().String("model", "gemini-2.5-flash", "Gemini model")
	a.bindFlags(cmd.Flags(), map[string]string{
		"assistant.api_key": "api-key",
		"assistant.model":   "model",
	})
	return cmd
}
