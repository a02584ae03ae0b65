package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/backoff"
	"github.com/cerebratechai/skillctl/pkg/db"
	"github.com/cerebratechai/skillctl/pkg/generator"
	"github.com/cerebratechai/skillctl/pkg/llm"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/presenter"
)

// legacyStateFile is the JSON state written by earlier generator versions
const legacyStateFile = "tools/generation_state.json"

// GenerateSettings is the generate section of the configuration
type GenerateSettings struct {
	Prompts string         `mapstructure:"prompts"`
	StateDB string         `mapstructure:"state_db"`
	LogFile string         `mapstructure:"log_file"`
	Delay   time.Duration  `mapstructure:"delay"`
	Retry   backoff.Config `mapstructure:"retry"`
}

// GenerateConfig holds configuration for the generate command
type GenerateConfig struct {
	Batch    string
	Priority string
	Retry    bool
	Delay    time.Duration
	Report   bool
	Provider string
}

// NewGenerateConfig creates a new GenerateConfig with default values
func NewGenerateConfig() *GenerateConfig {
	return &GenerateConfig{
		Delay: generator.DefaultDelay,
	}
}

func generateSettings() (GenerateSettings, error) {
	settings := GenerateSettings{
		Prompts: generator.PromptsFile,
		LogFile: "skill_generation.log",
		Delay:   generator.DefaultDelay,
		Retry:   backoff.DefaultConfig(),
	}
	if err := unmarshalSection("generate", &settings); err != nil {
		return settings, err
	}
	if settings.StateDB == "" {
		settings.StateDB = db.DefaultDBPath(rootDir())
	}
	if !filepath.IsAbs(settings.Prompts) {
		settings.Prompts = rootPath(settings.Prompts)
	}
	return settings, nil
}

// openStateStore opens the state database and imports a legacy JSON state into it once
func openStateStore(ctx context.Context, settings GenerateSettings) (*generator.Store, error) {
	store, err := generator.OpenStore(ctx, settings.StateDB)
	if err != nil {
		return nil, err
	}
	imported, err := store.ImportLegacy(ctx, rootPath(legacyStateFile))
	if err != nil {
		store.Close()
		return nil, err
	}
	if imported {
		logger.G(ctx).WithField("path", legacyStateFile).Info("imported legacy generation state")
	}
	return store, nil
}

var generateCmd = withTracing(&cobra.Command{
	Use:   "generate",
	Short: "Generate SKILL.md files from the prompt catalogue with an LLM",
	Long: `Generate skills listed in tools/prompts.json one at a time. Progress is stored after every
skill so an interrupted run can be resumed; already generated skills are skipped.

  --batch 01        generate a single batch
  --batch 01-05     generate every batch from 01 to 05
  --priority high   generate every skill with that priority
  --retry           generate the skills that failed previously`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getGenerateConfigFromFlags(cmd)
		ctx := cmd.Context()

		if config.Priority != "" && !slices.Contains(generator.Priorities, config.Priority) {
			return errors.Errorf("invalid priority %q, expected one of %s", config.Priority, strings.Join(generator.Priorities, ", "))
		}

		settings, err := generateSettings()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("delay") {
			config.Delay = settings.Delay
		}
		if logFile == nil && settings.LogFile != "" {
			logFile = logger.TeeToFile(logger.FileOptions{Path: settings.LogFile})
		}

		llmConfig, err := llm.GetConfigFromViper()
		if err != nil {
			return err
		}
		provider, err := llm.NewProvider(ctx, llmConfig.WithProvider(config.Provider))
		if err != nil {
			return err
		}

		prompts, err := generator.LoadPrompts(settings.Prompts)
		if err != nil {
			return err
		}

		store, err := openStateStore(ctx, settings)
		if err != nil {
			return err
		}
		defer store.Close()

		gen := generator.New(provider, store, generator.Options{
			BaseDir: rootDir(),
			Delay:   config.Delay,
			Retry:   settings.Retry,
		})

		var summary *generator.Summary
		switch {
		case config.Retry:
			summary, err = gen.RetryFailed(ctx, prompts)
		case config.Priority != "":
			summary, err = gen.Priority(ctx, prompts, config.Priority)
		case config.Batch != "":
			if start, end, ok := strings.Cut(config.Batch, "-"); ok {
				summary, err = gen.All(ctx, prompts, start, end)
			} else {
				summary, err = gen.Batch(ctx, prompts, config.Batch)
			}
		default:
			summary, err = gen.All(ctx, prompts, "", "")
		}

		printGenerationSummary(summary)
		if err != nil {
			return err
		}

		if config.Report && summary.State != nil {
			path := rootPath(generator.ReportFileName)
			if err := generator.WriteReport(path, summary.RunID, summary.State, time.Now()); err != nil {
				return err
			}
			presenter.Success(fmt.Sprintf("Report exported to %s", path))
		}
		return nil
	},
})

func printGenerationSummary(summary *generator.Summary) {
	if summary == nil || summary.RunID == "" {
		return
	}
	presenter.Separator()
	presenter.Stats(&presenter.RunStats{
		Succeeded: summary.Generated,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
		Elapsed:   summary.Elapsed,
	})
	if summary.State != nil && len(summary.State.Failed) > 0 {
		presenter.Section("Failed skills")
		for _, path := range summary.State.Failed {
			presenter.Bullet(path)
		}
		presenter.Info("Run 'skillctl generate --retry' to try them again.")
	}
}

// GenerateStatusConfig holds configuration for the generate status command
type GenerateStatusConfig struct {
	Limit int
}

// NewGenerateStatusConfig creates a new GenerateStatusConfig with default values
func NewGenerateStatusConfig() *GenerateStatusConfig {
	return &GenerateStatusConfig{
		Limit: 10,
	}
}

var generateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show generation progress and recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getGenerateStatusConfigFromFlags(cmd)
		ctx := cmd.Context()

		settings, err := generateSettings()
		if err != nil {
			return err
		}
		store, err := openStateStore(ctx, settings)
		if err != nil {
			return err
		}
		defer store.Close()

		state, err := store.Load(ctx)
		if err != nil {
			return err
		}
		presenter.Section("Generation state")
		presenter.Info(fmt.Sprintf("Generated: %d | Failed: %d", len(state.Generated), len(state.Failed)))
		if !state.LastUpdated.IsZero() {
			presenter.Info(fmt.Sprintf("Last updated: %s", state.LastUpdated.Local().Format(time.DateTime)))
		}
		for _, path := range state.Failed {
			msg, err := store.LastError(ctx, path)
			if err != nil {
				return err
			}
			presenter.Bullet(fmt.Sprintf("%s: %s", path, msg))
		}

		runs, err := store.Runs(ctx, config.Limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return nil
		}

		presenter.Info("")
		presenter.Section("Recent runs")
		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			finished := "running"
			if r.FinishedAt.Valid {
				finished = r.FinishedAt.String
			}
			if r.Interrupted {
				finished += " (interrupted)"
			}
			rows = append(rows, []string{
				shortID(r.ID), r.Mode, r.Provider, r.StartedAt, finished,
				strconv.Itoa(r.Succeeded), strconv.Itoa(r.Failed), strconv.Itoa(r.Skipped),
			})
		}
		presenter.Table([]string{"RUN", "MODE", "PROVIDER", "STARTED", "FINISHED", "OK", "FAILED", "SKIPPED"}, rows)
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	defaults := NewGenerateConfig()
	generateCmd.Flags().StringP("batch", "b", defaults.Batch, "Generate a batch, e.g. \"01\", or a range of batches, e.g. \"01-05\"")
	generateCmd.Flags().StringP("priority", "p", defaults.Priority, "Generate every skill with this priority (low, medium, high)")
	generateCmd.Flags().Bool("retry", defaults.Retry, "Retry the skills that failed previously")
	generateCmd.Flags().Duration("delay", defaults.Delay, "Delay between requests")
	generateCmd.Flags().Bool("report", defaults.Report, "Export generation_report.html when the run completes")
	generateCmd.Flags().String("provider", defaults.Provider, "LLM provider (anthropic, openai, google); overrides llm.provider")
	generateCmd.MarkFlagsMutuallyExclusive("batch", "priority", "retry")
	generateCmd.RegisterFlagCompletionFunc("priority", cobra.FixedCompletions(generator.Priorities, cobra.ShellCompDirectiveNoFileComp))

	statusDefaults := NewGenerateStatusConfig()
	generateStatusCmd.Flags().Int("limit", statusDefaults.Limit, "Number of recent runs to show")
	generateCmd.AddCommand(generateStatusCmd)
}

func getGenerateStatusConfigFromFlags(cmd *cobra.Command) *GenerateStatusConfig {
	config := NewGenerateStatusConfig()
	config.Limit, _ = cmd.Flags().GetInt("limit")
	return config
}

func getGenerateConfigFromFlags(cmd *cobra.Command) *GenerateConfig {
	config := NewGenerateConfig()
	config.Batch, _ = cmd.Flags().GetString("batch")
	config.Priority, _ = cmd.Flags().GetString("priority")
	config.Retry, _ = cmd.Flags().GetBool("retry")
	config.Delay, _ = cmd.Flags().GetDuration("delay")
	config.Report, _ = cmd.Flags().GetBool("report")
	config.Provider, _ = cmd.Flags().GetString("provider")
	return config
}
