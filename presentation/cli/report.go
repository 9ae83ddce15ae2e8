package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"snap_behat/infrastructure/config"
	"snap_behat/infrastructure/storage"
)

type reportFlags struct {
	dir   string
	dumps bool
}

func (f *reportFlags) bind(flags *pflag.FlagSet) {
	flags.StringVar(&f.dir, "fail-dump-dir", "", "directory a previous run saved its report to")
	flags.BoolVar(&f.dumps, "dumps", false, "also list every saved page dump")
}

func (f *reportFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("fail-dump-dir") {
		cfg.FailDumpDir = f.dir
	}
}

func newReportCommand() *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the last run saved in the fail dump directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), f.apply)
			if err != nil {
				return err
			}
			if cfg.FailDumpDir == "" {
				return errors.New("no fail dump directory: set SNAP_FAIL_DUMP_DIR or --fail-dump-dir")
			}
			store, err := storage.NewArtifacts(afero.NewOsFs(), cfg.FailDumpDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			results, err := store.LoadReport()
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}
			failed := 0
			for _, r := range results {
				if !r.Failed() {
					continue
				}
				failed++
				fmt.Fprintf(out, "FAILED %s (%s)\n", r.Name, r.URI)
				for _, s := range r.Steps {
					if s.Error == "" {
						continue
					}
					fmt.Fprintf(out, "  %s: %s\n", s.Phrase, s.Error)
					if s.Dump != nil {
						printDump(out, "    ", s.Dump.Screenshot, s.Dump.HTML)
					}
				}
			}
			fmt.Fprintf(out, "%d scenarios, %d failed\n", len(results), failed)

			if !f.dumps {
				return nil
			}
			dumps, err := store.Dumps()
			if err != nil {
				return fmt.Errorf("failed to read dump index: %w", err)
			}
			for _, d := range dumps {
				fmt.Fprintf(out, "%s %s %s\n", d.CreatedAt.Format("2006-01-02 15:04:05"), d.Label, d.URL)
				printDump(out, "  ", d.Screenshot, d.HTML)
			}
			return nil
		},
	}
	f.bind(cmd.Flags())
	return cmd
}

func printDump(out io.Writer, indent string, paths ...string) {
	for _, p := range paths {
		if p != "" {
			fmt.Fprintf(out, "%s%s\n", indent, p)
		}
	}
}
