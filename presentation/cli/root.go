// Package cli is the snapbehat command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitError carries a non-zero suite status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("suite finished with status %d", e.code)
}

// NewRootCommand - builds the command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "snapbehat",
		Short:         "Run Snap theme acceptance steps in a real browser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(), newStepsCommand(), newShellCommand(), newReportCommand())
	return root
}

// Execute - runs the command line and returns the process exit code
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
