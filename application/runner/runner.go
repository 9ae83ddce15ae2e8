// Package runner executes feature files against one browser session and
// keeps a record of every scenario it ran.
package runner

import (
	"context"
	"io"
	"sync"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"

	"snap_behat/application/steps"
	"snap_behat/domain/entities"
	"snap_behat/domain/interfaces"
)

// Options selects what a run executes and how it reports.
type Options struct {
	Paths         []string
	Tags          string
	Format        string
	Strict        bool
	StopOnFailure bool
	Output        io.Writer

	// Features runs in-memory feature files instead of Paths.
	Features []godog.Feature
}

type Runner struct {
	session  interfaces.Session
	registry *steps.Registry
	store    interfaces.ArtifactStore
	logger   *logrus.Logger

	mu      sync.Mutex
	results []entities.ScenarioResult
	current *entities.ScenarioResult
}

// NewRunner - creates a runner; store may be nil to skip failure dumps and reports
func NewRunner(session interfaces.Session, registry *steps.Registry, store interfaces.ArtifactStore, logger *logrus.Logger) *Runner {
	return &Runner{
		session:  session,
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// Run - executes the suite and returns godog's exit status
func (r *Runner) Run(ctx context.Context, opts Options) int {
	format := opts.Format
	if format == "" {
		format = "pretty"
	}
	suite := godog.TestSuite{
		Name:                "snap",
		ScenarioInitializer: r.InitializeScenario,
		Options: &godog.Options{
			Format:          format,
			Paths:           opts.Paths,
			Tags:            opts.Tags,
			Strict:          opts.Strict,
			StopOnFailure:   opts.StopOnFailure,
			FeatureContents: opts.Features,
			Output:          opts.Output,
			DefaultContext:  ctx,
		},
	}

	status := suite.Run()

	if r.store != nil {
		if err := r.store.SaveReport(r.Results()); err != nil {
			r.logger.Warnf("failed to save run report: %v", err)
		}
	}
	return status
}

// InitializeScenario - binds the steps and the bookkeeping hooks to a scenario
func (r *Runner) InitializeScenario(sc *godog.ScenarioContext) {
	r.registry.Bind(sc)

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		r.logger.Infof("scenario: %s", scenario.Name)
		if err := r.session.Reset(ctx); err != nil {
			return ctx, err
		}
		r.begin(scenario)
		return ctx, nil
	})

	sc.StepContext().After(func(ctx context.Context, st *godog.Step, status godog.StepResultStatus, err error) (context.Context, error) {
		r.record(ctx, st.Text, status, err)
		return ctx, nil
	})

	sc.After(func(ctx context.Context, scenario *godog.Scenario, err error) (context.Context, error) {
		r.finish()
		return ctx, nil
	})
}

// Results - returns the scenarios finished so far
func (r *Runner) Results() []entities.ScenarioResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entities.ScenarioResult, len(r.results))
	copy(out, r.results)
	return out
}

func (r *Runner) begin(scenario *godog.Scenario) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = &entities.ScenarioResult{ID: scenario.Id, Name: scenario.Name, URI: scenario.Uri}
}

func (r *Runner) record(ctx context.Context, phrase string, status godog.StepResultStatus, err error) {
	result := entities.StepResult{Phrase: phrase, Status: entities.StepStatus(status.String())}
	if err != nil {
		result.Error = err.Error()
	}
	if status == godog.StepFailed {
		r.logger.Errorf("step failed: %s: %v", phrase, err)
		result.Dump = r.dump(ctx, phrase)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current.Steps = append(r.current.Steps, result)
	}
}

func (r *Runner) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return
	}
	if r.current.Failed() {
		r.logger.Warnf("scenario failed: %s (%s)", r.current.Name, r.current.URI)
	}
	r.results = append(r.results, *r.current)
	r.current = nil
}

// dump saves the page as it was when phrase failed. Capture problems are
// logged and never fail the scenario a second time.
func (r *Runner) dump(ctx context.Context, phrase string) *entities.FailDump {
	if r.store == nil {
		return nil
	}

	label := phrase
	r.mu.Lock()
	if r.current != nil {
		label = r.current.Name + " " + phrase
	}
	r.mu.Unlock()

	url, err := r.session.CurrentURL(ctx)
	if err != nil {
		r.logger.Warnf("failed to read url for fail dump: %v", err)
	}
	png, err := r.session.Screenshot(ctx)
	if err != nil {
		r.logger.Warnf("failed to capture screenshot: %v", err)
	}
	html, err := r.session.Content(ctx)
	if err != nil {
		r.logger.Warnf("failed to capture page source: %v", err)
	}

	d, err := r.store.SaveDump(label, url, png, html)
	if err != nil {
		r.logger.Warnf("failed to save fail dump: %v", err)
		return nil
	}
	r.logger.Warnf("saved fail dump %s (screenshot=%s html=%s)", d.ID, d.Screenshot, d.HTML)
	return &d
}
