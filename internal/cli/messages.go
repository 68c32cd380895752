package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

func newMessagesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Chat with workers and employers",
	}
	cmd.AddCommand(
		newConversationsCmd(a),
		newMessagesShowCmd(a),
		newMessagesStartCmd(a),
		newMessagesSendCmd(a),
	)
	return cmd
}

func newConversationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List my conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				identity, err := a.signedIn()
				if err != nil {
					return err
				}
				if err := a.open(identity.Role, domain.RouteMessages); err != nil {
					return err
				}

				convs, err := a.api.ListConversations(cmd.Context(), identity.Token)
				if err != nil {
					return a.checkToken(cmd.Context(), err)
				}
				if len(convs) == 0 {
					fmt.Fprintln(a.out, "No conversations yet.")
					return nil
				}
				for _, c := range convs {
					fmt.Fprintf(a.out, "%s  with %s  updated %s\n", c.ID, strings.Join(others(c, identity.ID), ", "), c.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}
}

func newMessagesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Print a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				identity, err := a.signedIn()
				if err != nil {
					return err
				}
				if err := a.open(identity.Role, domain.ConversationRoute(args[0])); err != nil {
					return err
				}

				msgs, err := a.api.ListMessages(cmd.Context(), identity.Token, args[0])
				if err != nil {
					return a.checkToken(cmd.Context(), err)
				}
				for _, m := range msgs {
					printMessage(a, identity.ID, m)
				}
				return nil
			})
		},
	}
}

func newMessagesStartCmd(a *app) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "start <participant-id>",
		Short: "Start a conversation with another user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				identity, err := a.signedIn()
				if err != nil {
					return err
				}

				conv, err := a.api.StartConversation(cmd.Context(), identity.Token, args[0], jobID)
				if err != nil {
					return a.checkToken(cmd.Context(), err)
				}
				if err := a.open(identity.Role, domain.ConversationRoute(conv.ID)); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Started conversation %s\n", conv.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "job the conversation is about")
	return cmd
}

func newMessagesSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <conversation-id> <message>...",
		Short: "Send a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				identity, err := a.signedIn()
				if err != nil {
					return err
				}
				if err := a.open(identity.Role, domain.ConversationRoute(args[0])); err != nil {
					return err
				}

				msg, err := a.api.SendMessage(cmd.Context(), identity.Token, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return a.checkToken(cmd.Context(), err)
				}
				printMessage(a, identity.ID, msg)
				return nil
			})
		},
	}
}

func others(c *domain.Conversation, self string) []string {
	out := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p != self {
			out = append(out, p)
		}
	}
	return out
}

func printMessage(a *app, self string, m *domain.Message) {
	who := m.SenderID
	if who == self {
		who = "me"
	}
	fmt.Fprintf(a.out, "[%s] %s: %s\n", m.CreatedAt.Format("15:04"), who, m.Content)
}
