package main

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/gitutil"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/presenter"
	"github.com/cerebratechai/skillctl/pkg/updater"
)

// SyncConfig holds configuration for the sync command
type SyncConfig struct {
	Branch  string
	Target  string
	SkipGap bool
}

// NewSyncConfig creates a new SyncConfig with default values
func NewSyncConfig() *SyncConfig {
	return &SyncConfig{
		Branch: updater.DefaultBranch,
		Target: ".",
	}
}

var syncCmd = withTracing(&cobra.Command{
	Use:   "sync",
	Short: "Pull the latest skills and rerun the gap analysis",
	Long: `Fetch from the remote, check out the branch, fast-forward it and then run the gap
analysis against --target. Steps run in order and the first failure stops the sync.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getSyncConfigFromFlags(cmd)

		ctx := cmd.Context()

		err := newUpdater(config).Run(ctx, func(step updater.Step) {
			presenter.Info(step.Progress)
		})

		var stepErr *updater.StepError
		if errors.As(err, &stepErr) {
			logger.G(ctx).WithError(stepErr.Err).Error(stepErr.Step.Failure)
			presenter.Error(errors.New(stepErr.Step.Failure), "")
			return errSilent
		}
		if err != nil {
			return err
		}

		presenter.Success("Skills are up to date")
		return nil
	},
})

func init() {
	defaults := NewSyncConfig()
	syncCmd.Flags().String("branch", defaults.Branch, "Branch to check out and pull")
	syncCmd.Flags().StringP("target", "t", defaults.Target, "Project directory for the gap analysis")
	syncCmd.Flags().Bool("skip-gap", defaults.SkipGap, "Skip the gap analysis step")
}

func getSyncConfigFromFlags(cmd *cobra.Command) *SyncConfig {
	config := NewSyncConfig()
	config.Branch, _ = cmd.Flags().GetString("branch")
	config.Target, _ = cmd.Flags().GetString("target")
	config.SkipGap, _ = cmd.Flags().GetBool("skip-gap")
	return config
}

func newUpdater(config *SyncConfig) *updater.Updater {
	analyze := func(ctx context.Context, target string) error {
		return runGapAnalysis(ctx, target, "")
	}
	return updater.New(gitutil.NewForDir(rootDir()), analyze, updater.Options{
		Branch:  config.Branch,
		Target:  config.Target,
		SkipGap: config.SkipGap,
	})
}

func syncTask(ctx context.Context, args map[string]string) error {
	config := NewSyncConfig()
	config.Branch = argOr(args, "branch", config.Branch)
	config.Target = argOr(args, "target", config.Target)
	if v, ok := args["skip_gap"]; ok {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid skip_gap value %q", v)
		}
		config.SkipGap = skip
	}
	return newUpdater(config).Run(ctx, nil)
}
