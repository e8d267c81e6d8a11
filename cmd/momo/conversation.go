package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/sandevgo/momobot/internal/core"
	"github.com/spf13/cobra"
)

var (
	convUserID  string
	convAgentID string
	convTitle   string
)

var convCmd = &cobra.Command{
	Use:   "conversation",
	Short: "Manage conversations",
}

var convCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Start a new conversation between a user and a persona",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		// Both sides must exist before the conversation is created.
		if _, err := a.users.Get(ctx, convUserID); err != nil {
			return err
		}
		if _, err := a.agents.Get(ctx, convAgentID); err != nil {
			return err
		}

		now := time.Now().UTC()
		conv := core.Conversation{
			ConversationID: uuid.NewString(),
			UserID:         convUserID,
			AgentID:        convAgentID,
			Title:          convTitle,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := a.convs.Create(ctx, conv); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), conv.ConversationID)
		return nil
	},
}

var convListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		convs, err := a.convs.ListByUser(ctx, convUserID)
		if err != nil {
			return err
		}

		table := tablewriter.NewTable(cmd.OutOrStdout())
		table.Header("ID", "Agent", "Title", "Updated")
		for _, c := range convs {
			table.Append(c.ConversationID, c.AgentID, c.Title, c.UpdatedAt.Format(time.DateTime))
		}
		return table.Render()
	},
}

func init() {
	convCreateCmd.Flags().StringVar(&convUserID, "user", "", "user id")
	convCreateCmd.Flags().StringVar(&convAgentID, "agent", "", "agent id")
	convCreateCmd.Flags().StringVar(&convTitle, "title", "", "conversation title")
	_ = convCreateCmd.MarkFlagRequired("user")
	_ = convCreateCmd.MarkFlagRequired("agent")

	convListCmd.Flags().StringVar(&convUserID, "user", "", "user id")
	_ = convListCmd.MarkFlagRequired("user")

	convCmd.AddCommand(convCreateCmd, convListCmd)
	rootCmd.AddCommand(convCmd)
}
