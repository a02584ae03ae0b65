package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/cerebratechai/skillctl/pkg/presenter"
	"github.com/cerebratechai/skillctl/pkg/report"
)

// StatsConfig holds configuration for the stats command
type StatsConfig struct {
	Output string
}

// NewStatsConfig creates a new StatsConfig with default values
func NewStatsConfig() *StatsConfig {
	return &StatsConfig{}
}

var statsCmd = withTracing(&cobra.Command{
	Use:   "stats",
	Short: "Print repository statistics as markdown",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getStatsConfigFromFlags(cmd)

		md, err := renderStats(cmd.Context())
		if err != nil {
			return err
		}
		if config.Output == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		if err := fsutil.WriteFile(config.Output, []byte(md), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write statistics %s", config.Output)
		}
		presenter.Success(fmt.Sprintf("Statistics written to %s", config.Output))
		return nil
	},
})

func init() {
	defaults := NewStatsConfig()
	statsCmd.Flags().StringP("output", "o", defaults.Output, "Write the statistics to this file instead of stdout")
}

func getStatsConfigFromFlags(cmd *cobra.Command) *StatsConfig {
	config := NewStatsConfig()
	config.Output, _ = cmd.Flags().GetString("output")
	return config
}

func renderStats(ctx context.Context) (string, error) {
	docs, err := scanDocuments(ctx)
	if err != nil {
		return "", err
	}
	return report.RenderStats(report.ComputeStats(docs, time.Now()))
}

func statsTask(ctx context.Context, args map[string]string) error {
	md, err := renderStats(ctx)
	if err != nil {
		return err
	}
	path := argOr(args, "output", rootPath("STATS.md"))
	return errors.Wrapf(fsutil.WriteFile(path, []byte(md), 0o644), "failed to write statistics %s", path)
}
