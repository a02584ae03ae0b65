// Package schedule runs catalogue maintenance tasks on cron schedules.
package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/telemetry"
)

// Task names understood by the scheduler
const (
	TaskSync     = "sync"
	TaskGap      = "gap"
	TaskStats    = "stats"
	TaskReadme   = "readme"
	TaskManifest = "manifest"
	TaskReport   = "report"
)

// TaskNames lists every schedulable task
var TaskNames = []string{TaskSync, TaskGap, TaskStats, TaskReadme, TaskManifest, TaskReport}

// standard 5-field expressions plus descriptors such as @daily and @every 1h
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// JobConfig is one entry of schedule.jobs
type JobConfig struct {
	Name string            `mapstructure:"name"`
	Spec string            `mapstructure:"spec"`
	Task string            `mapstructure:"task"`
	Args map[string]string `mapstructure:"args"`
}

// Config is the schedule section of the configuration
type Config struct {
	Jobs []JobConfig `mapstructure:"jobs"`
}

// Task performs one unit of maintenance work
type Task func(ctx context.Context, args map[string]string) error

// Entry describes a scheduled job
type Entry struct {
	Name string
	Spec string
	Task string
	Next time.Time
}

// Scheduler runs configured jobs. A job whose previous run is still in
// progress is skipped.
type Scheduler struct {
	cron  *cron.Cron
	tasks map[string]Task
	ctx   context.Context
	jobs  map[cron.EntryID]JobConfig
}

// New creates a scheduler that can run the given tasks
func New(ctx context.Context, tasks map[string]Task) *Scheduler {
	cronLogger := cron.PrintfLogger(logger.G(ctx).WithField("component", "cron"))
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		tasks: tasks,
		ctx:   ctx,
		jobs:  make(map[cron.EntryID]JobConfig),
	}
}

// Add schedules a job
func (s *Scheduler) Add(job JobConfig) (cron.EntryID, error) {
	if job.Name == "" {
		job.Name = job.Task
	}
	task, ok := s.tasks[job.Task]
	if !ok {
		return 0, errors.Errorf("job '%s': unknown task '%s'", job.Name, job.Task)
	}
	if _, err := parser.Parse(job.Spec); err != nil {
		return 0, errors.Wrapf(err, "job '%s': invalid schedule '%s'", job.Name, job.Spec)
	}

	id, err := s.cron.AddFunc(job.Spec, func() { s.run(job, task) })
	if err != nil {
		return 0, errors.Wrapf(err, "job '%s'", job.Name)
	}
	s.jobs[id] = job
	return id, nil
}

// AddAll schedules every job in cfg, stopping at the first invalid one
func (s *Scheduler) AddAll(cfg Config) error {
	if len(cfg.Jobs) == 0 {
		return errors.New("no scheduled jobs configured")
	}
	for _, job := range cfg.Jobs {
		if _, err := s.Add(job); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) run(job JobConfig, task Task) {
	log := logger.G(s.ctx).WithFields(logrus.Fields{"job": job.Name, "task": job.Task})
	ctx := logger.WithLogger(s.ctx, log)

	start := time.Now()
	log.Info("running scheduled job")
	err := telemetry.WithSpan(ctx, "schedule."+job.Task, func(ctx context.Context) error {
		return task(ctx, job.Args)
	}, attribute.String("job", job.Name))

	log = log.WithField("elapsed", time.Since(start).Round(time.Millisecond))
	if err != nil {
		log.WithError(err).Error("scheduled job failed")
		return
	}
	log.Info("scheduled job finished")
}

// Entries lists the scheduled jobs ordered by next run
func (s *Scheduler) Entries() []Entry {
	var entries []Entry
	for _, e := range s.cron.Entries() {
		job := s.jobs[e.ID]
		entries = append(entries, Entry{Name: job.Name, Spec: job.Spec, Task: job.Task, Next: e.Next})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Next.Before(entries[j].Next)
	})
	return entries
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	for _, e := range s.Entries() {
		logger.G(ctx).WithFields(logrus.Fields{"job": e.Name, "next": e.Next.Format(time.RFC3339)}).Info("scheduled")
	}

	<-ctx.Done()
	logger.G(ctx).Info("stopping scheduler")
	<-s.cron.Stop().Done()
	return nil
}
