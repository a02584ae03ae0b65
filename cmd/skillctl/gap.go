package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/gap"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/presenter"
	"github.com/cerebratechai/skillctl/pkg/telemetry"
)

// GapConfig holds configuration for the gap command
type GapConfig struct {
	Target string
	Index  string
	Watch  bool
}

// NewGapConfig creates a new GapConfig with default values
func NewGapConfig() *GapConfig {
	return &GapConfig{
		Target: ".",
	}
}

var gapCmd = withTracing(&cobra.Command{
	Use:   "gap",
	Short: "Report project dependencies that no skill covers",
	Long: `Scan the dependency manifests of --target (package.json, requirements.txt, pyproject.toml,
Cargo.toml), map each library to a skill and write GAP_REPORT.md into the target.
With --watch the analysis reruns whenever one of those manifests changes.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getGapConfigFromFlags(cmd)
		ctx := cmd.Context()

		analyze := func(ctx context.Context) error {
			return runGapAnalysis(ctx, config.Target, config.Index)
		}
		if !config.Watch {
			return analyze(ctx)
		}

		cfg, err := gapConfig()
		if err != nil {
			return err
		}
		presenter.Info(fmt.Sprintf("Watching %s for dependency changes. Press Ctrl+C to stop.", config.Target))
		return gap.Watch(ctx, config.Target, cfg.Debounce, analyze)
	},
})

func init() {
	defaults := NewGapConfig()
	gapCmd.Flags().StringP("target", "t", defaults.Target, "Project directory to audit")
	gapCmd.Flags().String("index", defaults.Index, "Skill index file (default <root>/SKILL_INDEX.md)")
	gapCmd.Flags().BoolP("watch", "w", defaults.Watch, "Rerun the analysis when dependency manifests change")
}

func getGapConfigFromFlags(cmd *cobra.Command) *GapConfig {
	config := NewGapConfig()
	config.Target, _ = cmd.Flags().GetString("target")
	config.Index, _ = cmd.Flags().GetString("index")
	config.Watch, _ = cmd.Flags().GetBool("watch")
	return config
}

// runGapAnalysis audits target and writes its GAP_REPORT.md
func runGapAnalysis(ctx context.Context, target, index string) error {
	return telemetry.WithSpan(ctx, "gap.run", func(ctx context.Context) error {
		cfg, err := gapConfig()
		if err != nil {
			return err
		}

		known, fromIndex, err := gap.KnownSkills(ctx, rootDir(), index)
		if err != nil {
			return err
		}
		if !fromIndex {
			presenter.Warning("Skill index not found, using scanned skill names")
		}

		analyzer, err := gap.NewAnalyzer(cfg, known)
		if err != nil {
			return err
		}
		result, err := analyzer.Analyze(ctx, target)
		if err != nil {
			return err
		}

		path, err := gap.WriteReport(result, time.Now())
		if err != nil {
			return err
		}

		logger.G(ctx).WithField("gaps", len(result.Gaps)).WithField("covered", len(result.Covered)).Debug("gap analysis finished")
		presenter.Info(fmt.Sprintf("Found %d dependencies: %d covered, %d gaps", len(result.Dependencies), len(result.Covered), len(result.Gaps)))
		presenter.Success(fmt.Sprintf("Report generated: %s", path))
		return nil
	})
}

func gapTask(ctx context.Context, args map[string]string) error {
	return runGapAnalysis(ctx, argOr(args, "target", "."), args["index"])
}
