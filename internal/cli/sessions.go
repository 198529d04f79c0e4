package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/kestrel/internal/domain"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect stored conversation threads",
	}

	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsShowCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidConfig()
			if err != nil {
				return err
			}
			runner, cleanup, err := buildRunner(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			threads, err := runner.Store().List(context.Background())
			if err != nil {
				return err
			}
			if len(threads) == 0 {
				fmt.Println("no stored threads")
				return nil
			}
			for _, t := range threads {
				fmt.Printf("%s  updated %s\n", t.ID, t.UpdatedAt.Format(time.DateTime))
			}
			return nil
		},
	}
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <thread-id>",
		Short: "Print a thread's message history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidConfig()
			if err != nil {
				return err
			}
			runner, cleanup, err := buildRunner(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			msgs, err := runner.Store().Load(context.Background(), args[0])
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				fmt.Println("no messages")
				return nil
			}
			for _, m := range msgs {
				printMessage(m)
			}
			return nil
		},
	}
}

func printMessage(m domain.Message) {
	fmt.Printf("[%s] %s\n", m.Timestamp.Format(time.DateTime), m.Role)
	if m.Content != "" {
		fmt.Printf("  %s\n", m.Content)
	}
	for _, c := range m.ToolCalls {
		fmt.Printf("  -> %s(%s) [%s]\n", c.Name, c.Args, c.ID)
	}
	if m.ToolCallID != "" {
		fmt.Printf("  (result for %s)\n", m.ToolCallID)
	}
}
