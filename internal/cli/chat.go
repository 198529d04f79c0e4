package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kestrelhq/kestrel/internal/agent"
)

func newChatCmd() *cobra.Command {
	var (
		threadID string
		mock     bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the agent interactively",
		Long: "Starts an interactive terminal session. Each line is one turn; the\n" +
			"classified event stream is rendered as it arrives. Type quit or exit\n" +
			"to leave.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if mock {
				cfg.Model.Provider = "mock"
			}
			if err := validateConfig(cfg); err != nil {
				return err
			}

			runner, cleanup, err := buildRunner(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if threadID == "" {
				threadID = uuid.New().String()
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Printf("kestrel chat on thread %s (quit or exit to leave)\n", threadID)

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("\nUSER: ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "quit" || line == "exit" {
					break
				}

				fmt.Print("\nASSISTANT: ")
				_, err := runner.Turn(ctx, threadID, line, renderEvent)
				fmt.Println()
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					fmt.Printf("Error processing request: %v\n", err)
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&threadID, "thread", "", "thread id to continue (default: new thread)")
	cmd.Flags().BoolVar(&mock, "mock", false, "use the scripted mock model provider")

	return cmd
}

// renderEvent prints one classified stream event to the terminal.
func renderEvent(e agent.Event) {
	switch e.Type {
	case agent.EventText:
		fmt.Print(e.Text)
	case agent.EventToolCallStart:
		fmt.Printf("\n\n< TOOL CALL: %s >\n\n", e.ToolName)
	case agent.EventToolCallArg:
		fmt.Print(e.Text)
	case agent.EventTurnBoundary:
		fmt.Print("\n\n")
	case agent.EventArtifact:
		fmt.Print("\n\n[visualization artifact]\n\n")
	}
}
