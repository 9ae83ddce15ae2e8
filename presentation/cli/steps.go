package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"snap_behat/presentation/terminal"
)

func newStepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List every step pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			// Registration never touches the session.
			registry, err := newRegistry(nil, cfg, cfg.NewLogger())
			if err != nil {
				return err
			}
			for _, p := range registry.Patterns() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func newShellCommand() *cobra.Command {
	f := &sessionFlags{}
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Type steps at a prompt and run them in a live browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), f.apply)
			if err != nil {
				return err
			}
			logger := cfg.NewLogger()

			session, registry, err := openSession(cfg, logger)
			if err != nil {
				return err
			}
			defer session.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return terminal.NewTerminalInterface(registry, cmd.InOrStdin(), cmd.OutOrStdout(), logger).Run(ctx)
		},
	}
	f.bind(cmd.Flags())
	return cmd
}
