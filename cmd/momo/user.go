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
	userName     string
	userTimezone string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		user := core.User{
			UserID:    uuid.NewString(),
			Name:      userName,
			Timezone:  userTimezone,
			CreatedAt: time.Now().UTC(),
		}
		if err := a.users.Create(ctx, user); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), user.UserID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		users, err := a.users.List(ctx)
		if err != nil {
			return err
		}

		table := tablewriter.NewTable(cmd.OutOrStdout())
		table.Header("ID", "Name", "Timezone", "Created")
		for _, u := range users {
			table.Append(u.UserID, u.Name, u.Timezone, u.CreatedAt.Format(time.DateTime))
		}
		return table.Render()
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userTimezone, "timezone", "UTC", "IANA timezone, e.g. Asia/Shanghai")
	_ = userCreateCmd.MarkFlagRequired("name")

	userCmd.AddCommand(userCreateCmd, userListCmd)
	rootCmd.AddCommand(userCmd)
}
