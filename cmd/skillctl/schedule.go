package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/presenter"
	"github.com/cerebratechai/skillctl/pkg/schedule"
)

// scheduledTasks maps task names of schedule.jobs to their implementations
var scheduledTasks = map[string]schedule.Task{
	schedule.TaskSync:     syncTask,
	schedule.TaskGap:      gapTask,
	schedule.TaskStats:    statsTask,
	schedule.TaskReadme:   readmeTask,
	schedule.TaskManifest: manifestTask,
	schedule.TaskReport:   reportTask,
}

var scheduleCmd = withTracing(&cobra.Command{
	Use:   "schedule",
	Short: "Run the maintenance jobs configured in schedule.jobs",
	Long: `Run catalogue maintenance on cron schedules until interrupted. Jobs are read from the
schedule.jobs section of the configuration file, for example:

  schedule:
    jobs:
      - name: weekly-stats
        spec: "0 9 * * MON"
        task: stats
        args:
          output: STATS.md
      - name: nightly-sync
        spec: "@daily"
        task: sync

Tasks: sync, gap, stats, readme, manifest, report. A job still running when it is due
again is skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cfg, err := scheduleConfig()
		if err != nil {
			return err
		}

		scheduler := schedule.New(ctx, scheduledTasks)
		if err := scheduler.AddAll(cfg); err != nil {
			return err
		}

		presenter.Info(fmt.Sprintf("Running %d scheduled jobs. Press Ctrl+C to stop.", len(cfg.Jobs)))
		return scheduler.Run(ctx)
	},
})
