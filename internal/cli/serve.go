package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/kestrel/internal/gateway"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
		mock bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat gateway server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
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

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := gateway.New(cfg, runner, log)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan)")
	cmd.Flags().BoolVar(&mock, "mock", false, "use the scripted mock model provider")

	return cmd
}
