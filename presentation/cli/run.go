package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"snap_behat/application/runner"
	"snap_behat/domain/interfaces"
	"snap_behat/infrastructure/config"
	"snap_behat/infrastructure/storage"
)

type runFlags struct {
	sessionFlags
	tags          string
	format        string
	failDumpDir   string
	strict        bool
	stopOnFailure bool
}

func (f *runFlags) bind(flags *pflag.FlagSet) {
	f.sessionFlags.bind(flags)
	flags.StringVarP(&f.tags, "tags", "t", "", "only run scenarios matching this tag expression")
	flags.StringVarP(&f.format, "format", "f", "pretty", "godog formatter: pretty, progress, cucumber, junit")
	flags.StringVar(&f.failDumpDir, "fail-dump-dir", "", "save a screenshot and page source of failed steps here")
	flags.BoolVar(&f.strict, "strict", false, "fail on pending or undefined steps")
	flags.BoolVar(&f.stopOnFailure, "stop-on-failure", false, "stop at the first failed scenario")
}

func (f *runFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	f.sessionFlags.apply(flags, cfg)
	if flags.Changed("fail-dump-dir") {
		cfg.FailDumpDir = f.failDumpDir
	}
}

func newRunCommand() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run feature files",
		Long: `Runs the scenarios in the given feature files or directories (default: features)
against one browser session. Settings come from SNAP_* environment variables and
an optional .env file; flags override them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeatures(cmd, args, f)
		},
	}
	f.bind(cmd.Flags())
	return cmd
}

func runFeatures(cmd *cobra.Command, paths []string, f *runFlags) error {
	cfg, err := loadConfig(cmd.Flags(), f.apply)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	var store interfaces.ArtifactStore
	if cfg.FailDumpDir != "" {
		if store, err = storage.NewArtifacts(afero.NewOsFs(), cfg.FailDumpDir); err != nil {
			return err
		}
	}

	session, registry, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warnf("failed to close session: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status := runner.NewRunner(session, registry, store, logger).Run(ctx, runner.Options{
		Paths:         paths,
		Tags:          f.tags,
		Format:        f.format,
		Strict:        f.strict,
		StopOnFailure: f.stopOnFailure,
		Output:        cmd.OutOrStdout(),
	})
	if status != 0 {
		return &exitError{code: status}
	}
	return nil
}
