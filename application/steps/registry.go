// Package steps holds the step definitions and the registry that dispatches
// phrases to them. Handlers may return a phrase sequence, which the registry
// runs in order as if each phrase had been written in the scenario.
package steps

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"

	"snap_behat/domain/entities"
	"snap_behat/domain/errs"
)

// maxDepth bounds how deep composed sequences may nest.
const maxDepth = 16

// Args are the unescaped capture groups of a matched phrase.
type Args []string

// Int parses argument i as a decimal integer.
func (a Args) Int(i int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(a[i]))
	if err != nil {
		return 0, errs.Wrap(errs.MalformedInput, fmt.Sprintf("argument %q is not a number", a[i]), err)
	}
	return n, nil
}

// Ordinal parses argument i as an English ordinal such as "2nd".
func (a Args) Ordinal(i int) (int, error) {
	v := strings.ToLower(strings.TrimSpace(a[i]))
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(v, suffix) {
			v = strings.TrimSuffix(v, suffix)
			break
		}
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, errs.Newf(errs.MalformedInput, "argument %q is not an ordinal", a[i])
	}
	return n, nil
}

// Negated reports whether argument i is the optional "not " capture.
func (a Args) Negated(i int) bool {
	return strings.TrimSpace(a[i]) == "not"
}

// Handler runs a step. A non-empty sequence is dispatched after it returns.
type Handler func(ctx context.Context, args Args) (entities.Sequence, error)

// Definition binds a phrase pattern to its handler.
type Definition struct {
	Pattern *regexp.Regexp
	Handler Handler
}

// Registry matches phrases against definitions in registration order.
type Registry struct {
	defs   []*Definition
	logger *logrus.Logger
}

// NewRegistry - creates an empty registry
func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{logger: logger}
}

// Define registers a pattern. It panics on an invalid expression, like regexp.MustCompile.
func (r *Registry) Define(expr string, h Handler) {
	r.defs = append(r.defs, &Definition{Pattern: regexp.MustCompile(expr), Handler: h})
}

// Patterns lists the registered expressions.
func (r *Registry) Patterns() []string {
	out := make([]string, len(r.defs))
	for i, def := range r.defs {
		out[i] = def.Pattern.String()
	}
	return out
}

// Match returns the first definition matching phrase and its unescaped arguments.
func (r *Registry) Match(phrase entities.Phrase) (*Definition, Args, error) {
	for _, def := range r.defs {
		m := def.Pattern.FindStringSubmatch(string(phrase))
		if m == nil {
			continue
		}
		return def, unescapeAll(m[1:]), nil
	}
	return nil, nil, errs.Newf(errs.UndefinedStep, "undefined step %q", phrase)
}

// Dispatch runs the step matching phrase, then any sequence it returns.
func (r *Registry) Dispatch(ctx context.Context, phrase entities.Phrase) error {
	def, args, err := r.Match(phrase)
	if err != nil {
		return err
	}
	r.logger.Debugf("step: %s", phrase)
	return r.run(ctx, def, args)
}

// DispatchAll runs phrases in order and stops at the first failure.
func (r *Registry) DispatchAll(ctx context.Context, seq entities.Sequence) error {
	for _, p := range seq {
		if err := r.Dispatch(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Run normalizes mixed literal and prebuilt inputs and dispatches them in order.
func (r *Registry) Run(ctx context.Context, inputs ...entities.PhraseInput) error {
	seq, err := entities.Normalize(inputs...)
	if err != nil {
		return err
	}
	return r.DispatchAll(ctx, seq)
}

type depthKey struct{}

func (r *Registry) run(ctx context.Context, def *Definition, args Args) error {
	depth, _ := ctx.Value(depthKey{}).(int)
	if depth >= maxDepth {
		return errs.Newf(errs.Internal, "step sequences nested deeper than %d", maxDepth)
	}

	seq, err := def.Handler(ctx, args)
	if err != nil {
		return err
	}
	if len(seq) == 0 {
		return nil
	}
	r.logger.Debugf("expanding into: %s", strings.Join(seq.Strings(), "; "))
	return r.DispatchAll(context.WithValue(ctx, depthKey{}, depth+1), seq)
}

// Bind registers every definition with a godog scenario.
func (r *Registry) Bind(sc *godog.ScenarioContext) {
	for _, def := range r.defs {
		sc.Step(def.Pattern, r.adapt(def))
	}
}

// adapt wraps a definition in a function with one string parameter per
// capture group, which is the shape godog passes arguments in.
func (r *Registry) adapt(def *Definition) interface{} {
	call := func(ctx context.Context, raw ...string) error {
		return r.run(ctx, def, unescapeAll(raw))
	}
	switch def.Pattern.NumSubexp() {
	case 0:
		return func(ctx context.Context) error { return call(ctx) }
	case 1:
		return func(ctx context.Context, a string) error { return call(ctx, a) }
	case 2:
		return func(ctx context.Context, a, b string) error { return call(ctx, a, b) }
	case 3:
		return func(ctx context.Context, a, b, c string) error { return call(ctx, a, b, c) }
	case 4:
		return func(ctx context.Context, a, b, c, d string) error { return call(ctx, a, b, c, d) }
	default:
		panic(fmt.Sprintf("step %q has too many arguments", def.Pattern))
	}
}

func unescapeAll(raw []string) Args {
	out := make(Args, len(raw))
	for i, s := range raw {
		out[i] = entities.Unescape(s)
	}
	return out
}
