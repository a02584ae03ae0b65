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

// ReportConfig holds configuration for the report command
type ReportConfig struct {
	Output string
}

// NewReportConfig creates a new ReportConfig with default values
func NewReportConfig() *ReportConfig {
	return &ReportConfig{
		Output: "validation-report.html",
	}
}

var reportCmd = withTracing(&cobra.Command{
	Use:   "report",
	Short: "Render the HTML validation report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getReportConfigFromFlags(cmd)

		count, err := writeValidationReport(cmd.Context(), config.Output)
		if err != nil {
			return err
		}
		if count == 0 {
			presenter.Warning("No SKILL.md files found")
			return nil
		}

		presenter.Success(fmt.Sprintf("Generated validation report for %d skill files", count))
		presenter.Info(fmt.Sprintf("   Output: %s", config.Output))
		return nil
	},
})

func init() {
	defaults := NewReportConfig()
	reportCmd.Flags().StringP("output", "o", defaults.Output, "Path of the HTML report")
}

func getReportConfigFromFlags(cmd *cobra.Command) *ReportConfig {
	config := NewReportConfig()
	config.Output, _ = cmd.Flags().GetString("output")
	return config
}

// writeValidationReport renders the report to path and returns the number of
// files analysed. Nothing is written when there are no skills.
func writeValidationReport(ctx context.Context, path string) (int, error) {
	docs, err := scanDocuments(ctx)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	cfg, err := validateConfig()
	if err != nil {
		return 0, err
	}

	html, err := report.RenderValidation(report.AnalyzeAll(docs, cfg.RequiredSections), time.Now())
	if err != nil {
		return 0, err
	}
	if err := fsutil.WriteFile(path, []byte(html), 0o644); err != nil {
		return 0, errors.Wrapf(err, "failed to write report %s", path)
	}
	return len(docs), nil
}

func reportTask(ctx context.Context, args map[string]string) error {
	_, err := writeValidationReport(ctx, argOr(args, "output", rootPath(NewReportConfig().Output)))
	return err
}
