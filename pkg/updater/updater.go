// Package updater brings a local skills checkout up to date with its remote
// and re-runs the gap analysis. Steps run strictly in order, each is tried
// once, and the first failure stops the run.
package updater

import (
	"context"
	"fmt"

	"github.com/cerebratechai/skillctl/pkg/gitutil"
	"github.com/cerebratechai/skillctl/pkg/logger"
)

// DefaultBranch is checked out before pulling
const DefaultBranch = "main"

// Options configures a sync run
type Options struct {
	Branch  string
	Target  string
	SkipGap bool
}

// Step is one stage of a sync run
type Step struct {
	// Progress is printed before the step runs
	Progress string
	// Failure is the fixed message reported when the step fails
	Failure string
	run     func(ctx context.Context) error
}

// StepError reports the step that stopped a run
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step.Failure, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// GapFunc runs the gap analysis of target
type GapFunc func(ctx context.Context, target string) error

// Updater runs the sync steps against a git checkout
type Updater struct {
	git  *gitutil.Client
	gap  GapFunc
	opts Options
}

// New creates an Updater. gap may be nil when opts.SkipGap is set.
func New(git *gitutil.Client, gap GapFunc, opts Options) *Updater {
	if opts.Branch == "" {
		opts.Branch = DefaultBranch
	}
	if opts.Target == "" {
		opts.Target = "."
	}
	return &Updater{git: git, gap: gap, opts: opts}
}

// Steps returns the steps of a run in execution order
func (u *Updater) Steps() []Step {
	steps := []Step{
		{
			Progress: "Fetching latest changes...",
			Failure:  "Failed to fetch from remote",
			run:      u.git.Fetch,
		},
		{
			Progress: fmt.Sprintf("Checking out %s...", u.opts.Branch),
			Failure:  fmt.Sprintf("Failed to checkout %s", u.opts.Branch),
			run: func(ctx context.Context) error {
				return u.git.Checkout(ctx, u.opts.Branch)
			},
		},
		{
			Progress: "Pulling latest changes...",
			Failure:  "Failed to pull latest changes",
			run:      u.git.PullFastForward,
		},
	}

	if !u.opts.SkipGap && u.gap != nil {
		steps = append(steps, Step{
			Progress: "Running Gap Analysis...",
			Failure:  "Gap analysis failed",
			run: func(ctx context.Context) error {
				return u.gap(ctx, u.opts.Target)
			},
		})
	}
	return steps
}

// Run executes the steps in order, calling onStep before each one. It
// returns a *StepError for the first step that fails.
func (u *Updater) Run(ctx context.Context, onStep func(Step)) error {
	for _, step := range u.Steps() {
		if onStep != nil {
			onStep(step)
		}
		logger.G(ctx).WithField("step", step.Progress).Debug("running sync step")
		if err := step.run(ctx); err != nil {
			return &StepError{Step: step, Err: err}
		}
	}
	return nil
}
