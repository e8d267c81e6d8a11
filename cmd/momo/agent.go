package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/sandevgo/momobot/internal/config"
	"github.com/sandevgo/momobot/internal/core"
	"github.com/spf13/cobra"
)

var (
	agentName   string
	agentPrompt string
	agentModel  string
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage chat personas",
}

var agentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new persona",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		model := agentModel
		if model == "" {
			model = config.NewOpenAIConfig(ctx).DefaultModel
		}

		agent := core.Agent{
			AgentID:      uuid.NewString(),
			Name:         agentName,
			SystemPrompt: agentPrompt,
			Model:        model,
			CreatedAt:    time.Now().UTC(),
		}
		if err := a.agents.Create(ctx, agent); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), agent.AgentID)
		return nil
	},
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		agents, err := a.agents.List(ctx)
		if err != nil {
			return err
		}

		table := tablewriter.NewTable(cmd.OutOrStdout())
		table.Header("ID", "Name", "Model", "Created")
		for _, ag := range agents {
			table.Append(ag.AgentID, ag.Name, ag.Model, ag.CreatedAt.Format(time.DateTime))
		}
		return table.Render()
	},
}

var agentShowCmd = &cobra.Command{
	Use:   "show <agent-id>",
	Short: "Show one persona in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		ag, err := a.agents.Get(ctx, args[0])
		if err != nil {
			return err
		}

		table := tablewriter.NewTable(cmd.OutOrStdout())
		table.Header("Field", "Value")
		table.Append("ID", ag.AgentID)
		table.Append("Name", ag.Name)
		table.Append("Model", ag.Model)
		table.Append("Prompt", ag.SystemPrompt)
		table.Append("Created", ag.CreatedAt.Format(time.DateTime))
		return table.Render()
	},
}

func init() {
	agentCreateCmd.Flags().StringVar(&agentName, "name", "", "persona name")
	agentCreateCmd.Flags().StringVar(&agentPrompt, "prompt", "", "system prompt for the persona")
	agentCreateCmd.Flags().StringVar(&agentModel, "model", "", "model id, defaults to OPENAI_MODEL")
	_ = agentCreateCmd.MarkFlagRequired("name")
	_ = agentCreateCmd.MarkFlagRequired("prompt")

	agentCmd.AddCommand(agentCreateCmd, agentListCmd, agentShowCmd)
	rootCmd.AddCommand(agentCmd)
}
