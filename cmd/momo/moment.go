package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	momentUserID string
	momentStatus string
	momentLimit  int
	dueBefore    string
)

var momentCmd = &cobra.Command{
	Use:   "moment",
	Short: "Inspect and manage captured moments",
}

var momentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's moments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		moments, err := a.moments.List(ctx, momentUserID, momentStatus, momentLimit)
		if err != nil {
			return err
		}

		table := tablewriter.NewTable(cmd.OutOrStdout())
		table.Header("ID", "Type", "Event", "Event time", "Remind time", "Status")
		for _, m := range moments {
			table.Append(m.MomentID, m.Type, m.EventDescription,
				m.EventTime.Format(time.DateTime), m.RemindTime.Format(time.DateTime), m.Status)
		}
		return table.Render()
	},
}

var momentShowCmd = &cobra.Command{
	Use:   "show <moment-id>",
	Short: "Show one moment in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.moments.Get(ctx, args[0])
		if err != nil {
			return err
		}

		executed := ""
		if m.ExecutedAt != nil {
			executed = m.ExecutedAt.Format(time.DateTime)
		}

		table := tablewriter.NewTable(cmd.OutOrStdout())
		table.Header("Field", "Value")
		table.Append("ID", m.MomentID)
		table.Append("User", m.UserID)
		table.Append("Conversation", m.ConversationID)
		table.Append("Type", m.Type)
		table.Append("Event", m.EventDescription)
		table.Append("Event time", m.EventTime.Format(time.DateTime))
		table.Append("Remind time", m.RemindTime.Format(time.DateTime))
		table.Append("Emotion", m.Emotion)
		table.Append("Emotion level", strconv.Itoa(m.EmotionLevel))
		table.Append("Importance", m.Importance)
		table.Append("Action", m.SuggestedAction)
		table.Append("Timing", m.SuggestedTiming)
		table.Append("First message", m.FirstMessage)
		table.Append("Attitude", m.AIAttitude)
		table.Append("Reason", m.Reason)
		table.Append("Status", m.Status)
		table.Append("Confirmed", strconv.FormatBool(m.Confirmed))
		table.Append("Executed", executed)
		return table.Render()
	},
}

var momentConfirmCmd = &cobra.Command{
	Use:   "confirm <moment-id>",
	Short: "Confirm a moment so the reminder gets scheduled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.moments.Confirm(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is %s, reminder at %s\n",
			m.MomentID, m.Status, m.RemindTime.Format(time.DateTime))
		return nil
	},
}

var momentCancelCmd = &cobra.Command{
	Use:   "cancel <moment-id>",
	Short: "Cancel a moment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.moments.Cancel(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", m.MomentID, m.Status)
		return nil
	},
}

var momentDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List scheduled moments whose remind time has passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		before := time.Now().UTC()
		if dueBefore != "" {
			before, err = time.Parse(time.RFC3339, dueBefore)
			if err != nil {
				return fmt.Errorf("invalid --before value %q: %w", dueBefore, err)
			}
		}

		moments, err := a.moments.ListDue(ctx, before, momentLimit)
		if err != nil {
			return err
		}

		table := tablewriter.NewTable(cmd.OutOrStdout())
		table.Header("ID", "User", "Event", "Remind time", "Action")
		for _, m := range moments {
			table.Append(m.MomentID, m.UserID, m.EventDescription,
				m.RemindTime.Format(time.DateTime), m.SuggestedAction)
		}
		return table.Render()
	},
}

func init() {
	momentListCmd.Flags().StringVar(&momentUserID, "user", "", "user id")
	momentListCmd.Flags().StringVar(&momentStatus, "status", "", "filter by status (pending, scheduled, completed, cancelled)")
	momentListCmd.Flags().IntVar(&momentLimit, "limit", 50, "max rows")
	_ = momentListCmd.MarkFlagRequired("user")

	momentDueCmd.Flags().StringVar(&dueBefore, "before", "", "cutoff in RFC3339, defaults to now")
	momentDueCmd.Flags().IntVar(&momentLimit, "limit", 50, "max rows")

	momentCmd.AddCommand(momentListCmd, momentShowCmd, momentConfirmCmd, momentCancelCmd, momentDueCmd)
	rootCmd.AddCommand(momentCmd)
}
