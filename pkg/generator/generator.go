// Package generator drives batch skill generation from a prompts file
// through an LLM provider, persisting progress so interrupted runs resume.
package generator

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cerebratechai/skillctl/pkg/backoff"
	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/cerebratechai/skillctl/pkg/llm"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/metrics"
	"github.com/cerebratechai/skillctl/pkg/report"
	"github.com/cerebratechai/skillctl/pkg/telemetry"
)

// Run modes recorded with each run
const (
	ModeAll      = "all"
	ModeBatch    = "batch"
	ModePriority = "priority"
	ModeRetry    = "retry"
)

// DefaultDelay is the pause between two provider requests
const DefaultDelay = 5 * time.Second

// ReportFileName is where WriteReport puts the HTML summary by default
const ReportFileName = "generation_report.html"

// Options configures a Generator
type Options struct {
	// BaseDir is the directory prompt paths are resolved against
	BaseDir string
	Delay   time.Duration
	Retry   backoff.Config
}

// Summary is the outcome of a single run
type Summary struct {
	RunID       string
	Mode        string
	Generated   int
	Skipped     int
	Failed      int
	Elapsed     time.Duration
	Interrupted bool
	// State is the persisted state after the run
	State *State
}

// Succeeded counts both new generations and skipped, already generated skills
func (s *Summary) Succeeded() int {
	return s.Generated + s.Skipped
}

// Generator generates skills one at a time
type Generator struct {
	provider llm.Provider
	store    *Store
	opts     Options
	now      func() time.Time
}

// New creates a Generator
func New(provider llm.Provider, store *Store, opts Options) *Generator {
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}
	return &Generator{
		provider: provider,
		store:    store,
		opts:     opts,
		now:      time.Now,
	}
}

// All generates every batch between start and end inclusive. Empty bounds are open.
func (g *Generator) All(ctx context.Context, prompts []Prompt, start, end string) (*Summary, error) {
	batches := BatchRange(Batches(prompts), start, end)
	inRange := make(map[string]bool, len(batches))
	for _, b := range batches {
		inRange[b] = true
	}

	log := logger.G(ctx)
	log.Info("Starting Skill Generation")
	log.Infof("Batches to generate: %s", strings.Join(batches, ", "))
	log.Infof("Total skills: %d", len(filter(prompts, func(p Prompt) bool { return inRange[p.Batch] })))

	return g.run(ctx, ModeAll, func(ctx context.Context, s *Summary) error {
		for _, batch := range batches {
			if err := g.batch(ctx, prompts, batch, s); err != nil {
				return err
			}
		}
		return nil
	})
}

// Batch generates a single batch
func (g *Generator) Batch(ctx context.Context, prompts []Prompt, batch string) (*Summary, error) {
	return g.run(ctx, ModeBatch, func(ctx context.Context, s *Summary) error {
		return g.batch(ctx, prompts, batch, s)
	})
}

// Priority generates every skill with the given priority
func (g *Generator) Priority(ctx context.Context, prompts []Prompt, priority string) (*Summary, error) {
	selected := filter(prompts, func(p Prompt) bool { return p.Priority == priority })

	logger.G(ctx).Infof("Generating %s Priority Skills", strings.ToUpper(priority))
	logger.G(ctx).Infof("Total skills: %d", len(selected))

	return g.run(ctx, ModePriority, func(ctx context.Context, s *Summary) error {
		return g.sequence(ctx, selected, true, s)
	})
}

// RetryFailed clears the failed list and generates those skills again
func (g *Generator) RetryFailed(ctx context.Context, prompts []Prompt) (*Summary, error) {
	state, err := g.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(state.Failed) == 0 {
		logger.G(ctx).Info("No failed skills to retry.")
		return &Summary{Mode: ModeRetry, State: state}, nil
	}

	failed := make(map[string]bool, len(state.Failed))
	for _, p := range state.Failed {
		failed[p] = true
	}
	selected := filter(prompts, func(p Prompt) bool { return failed[p.Path] })

	logger.G(ctx).Info("Retrying Failed Skills")
	logger.G(ctx).Infof("Total failed: %d", len(state.Failed))

	if err := g.store.ClearFailed(ctx); err != nil {
		return nil, err
	}

	summary, err := g.run(ctx, ModeRetry, func(ctx context.Context, s *Summary) error {
		return g.sequence(ctx, selected, false, s)
	})
	if summary != nil {
		logger.G(ctx).Infof("Retry complete: %d succeeded, %d failed", summary.Generated, summary.Failed)
	}
	return summary, err
}

func (g *Generator) run(ctx context.Context, mode string, body func(context.Context, *Summary) error) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString(), Mode: mode}
	ctx = logger.WithLogger(ctx, logger.G(ctx).WithField("run_id", summary.RunID))

	run := &Run{ID: summary.RunID, Mode: mode, Provider: g.provider.Name()}
	if err := g.store.BeginRun(ctx, run); err != nil {
		return nil, err
	}

	start := g.now()
	err := telemetry.WithSpan(ctx, "generator."+mode, func(ctx context.Context) error {
		return body(ctx, summary)
	}, attribute.String("run_id", summary.RunID), attribute.String("provider", g.provider.Name()))
	summary.Elapsed = g.now().Sub(start)
	summary.Interrupted = ctx.Err() != nil

	// the run is recorded even when ctx was cancelled
	saveCtx := context.WithoutCancel(ctx)
	run.Succeeded = summary.Succeeded()
	run.Failed = summary.Failed
	run.Skipped = summary.Skipped
	run.Interrupted = summary.Interrupted
	if finishErr := g.store.FinishRun(saveCtx, run); finishErr != nil && err == nil {
		err = finishErr
	}

	state, loadErr := g.store.Load(saveCtx)
	if loadErr != nil && err == nil {
		err = loadErr
	}
	summary.State = state

	if summary.Interrupted {
		return summary, errors.Wrap(ctx.Err(), "interrupted by user, progress has been saved")
	}
	return summary, err
}

func (g *Generator) batch(ctx context.Context, prompts []Prompt, batch string, s *Summary) error {
	selected := filter(prompts, func(p Prompt) bool { return p.Batch == batch })
	log := logger.G(ctx)
	if len(selected) == 0 {
		log.Warnf("No prompts found for batch %s", batch)
		return nil
	}

	log.Infof("Starting Batch %s: %s", batch, selected[0].Category)
	log.Infof("Total skills: %d", len(selected))

	before := *s
	if err := g.sequence(ctx, selected, true, s); err != nil {
		return err
	}

	log.Infof("Batch %s Complete!", batch)
	log.Infof("Success: %d/%d", s.Succeeded()-before.Succeeded(), len(selected))
	log.Infof("Failed: %d/%d", s.Failed-before.Failed, len(selected))
	return nil
}

// sequence generates prompts in order with a delay between items. Only
// state persistence failures and cancellation stop it early.
func (g *Generator) sequence(ctx context.Context, prompts []Prompt, skipGenerated bool, s *Summary) error {
	var state *State
	if skipGenerated {
		var err error
		if state, err = g.store.Load(ctx); err != nil {
			return err
		}
	}

	log := logger.G(ctx)
	for i, p := range prompts {
		if skipGenerated && state.IsGenerated(p.Path) {
			log.Infof("[%d/%d] Skipping (already generated): %s", i+1, len(prompts), p.SkillName)
			s.Skipped++
			continue
		}

		log.Infof("[%d/%d] Processing: %s", i+1, len(prompts), p.SkillName)
		err := g.generate(ctx, p)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		// a written skill is recorded even if ctx was cancelled meanwhile
		saveCtx := context.WithoutCancel(ctx)
		if err != nil {
			log.WithError(err).Errorf("✗ Failed: %s", p.SkillName)
			s.Failed++
			if err := g.store.MarkFailed(saveCtx, p.Path, err); err != nil {
				return err
			}
		} else {
			log.Infof("✓ Successfully generated: %s", p.SkillName)
			s.Generated++
			if err := g.store.MarkGenerated(saveCtx, p.Path); err != nil {
				return err
			}
		}

		if i < len(prompts)-1 && g.opts.Delay > 0 {
			log.Infof("Waiting %s before next skill...", g.opts.Delay)
			if err := sleep(ctx, g.opts.Delay); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) generate(ctx context.Context, p Prompt) error {
	target, err := g.resolve(p.Path)
	if err != nil {
		return err
	}

	return telemetry.WithSpan(ctx, "generator.generate", func(ctx context.Context) error {
		logger.G(ctx).Infof("Generating: %s", p.SkillName)

		var content string
		start := time.Now()
		err := backoff.Do(ctx, g.opts.Retry, "generate "+p.SkillName, llm.IsRetryable, func() error {
			var err error
			content, err = g.provider.Generate(ctx, p.Prompt)
			return err
		})
		metrics.GenerationDuration.WithLabelValues(g.provider.Name()).Observe(time.Since(start).Seconds())
		metrics.GeneratedSkills.WithLabelValues(g.provider.Name(), metrics.Result(err)).Inc()
		if err != nil {
			return err
		}

		return fsutil.WriteFile(target, []byte(content), 0o644)
	}, attribute.String("skill", p.SkillName), attribute.String("path", p.Path))
}

func (g *Generator) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", errors.Errorf("skill path must be relative: %s", path)
	}
	target, err := securejoin.SecureJoin(g.opts.BaseDir, path)
	if err != nil {
		return "", errors.Wrapf(err, "invalid skill path %s", path)
	}
	return target, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WriteReport renders the generation report for state into path
func WriteReport(path, runID string, state *State, now time.Time) error {
	html, err := report.RenderGeneration(runID, state.Generated, state.Failed, now)
	if err != nil {
		return err
	}
	return fsutil.WriteFile(path, []byte(html), 0o644)
}
