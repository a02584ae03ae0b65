package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/presenter"
)

// errSilent marks a failure that was already reported to the user
var errSilent = errors.New("command failed")

var logFile io.Closer

func init() {
	initViper()

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

func initViper() {
	// Environment variables
	viper.SetEnvPrefix("SKILLCTL")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillctl")
	viper.AddConfigPath(".")

	viper.SetDefault("root", ".")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "fmt")
}

var rootCmd = &cobra.Command{
	Use:   "skillctl",
	Short: "Maintain a catalogue of Claude skills",
	Long: `skillctl scans, validates, reports on and generates the SKILL.md documents of a
skills repository, keeps it in sync with its remote, audits a project's
dependencies against it and serves it to assistants over MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Configure(viper.GetString("log_level"), viper.GetString("log_format")); err != nil {
			return err
		}
		if path := viper.GetString("log_file"); path != "" {
			logFile = logger.TeeToFile(logger.FileOptions{Path: path})
		}

		shutdown, err := initTracing(cmd.Context())
		if err != nil {
			logger.G(cmd.Context()).WithError(err).Warn("failed to initialise tracing")
			return nil
		}
		tracingShutdown = shutdown
		return nil
	},
}

// finishCommand flushes tracing and closes the log file. It runs after every
// command, including ones that returned an error.
func finishCommand(ctx context.Context) {
	if tracingShutdown != nil {
		if err := tracingShutdown(context.WithoutCancel(ctx)); err != nil {
			logger.G(ctx).WithError(err).Debug("failed to shut down tracing")
		}
		tracingShutdown = nil
	}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("root", ".", "Root directory of the skills repository")
	flags.String("log-level", "info", "Log level (panic, fatal, error, warn, info, debug, trace)")
	flags.String("log-format", "fmt", "Log format (fmt or json)")
	flags.String("log-file", "", "Also write logs to this file, rotated by size")
	flags.BoolP("quiet", "q", false, "Suppress informational output")
	bindRootFlags()

	cobra.OnInitialize(func() {
		presenter.SetQuiet(viper.GetBool("quiet"))
	})
}

func bindRootFlags() {
	flags := rootCmd.PersistentFlags()
	viper.BindPFlag("root", flags.Lookup("root"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("log_file", flags.Lookup("log-file"))
	viper.BindPFlag("quiet", flags.Lookup("quiet"))
}

func init() {
	rootCmd.AddCommand(
		scanCmd,
		validateCmd,
		examplesCmd,
		reportCmd,
		statsCmd,
		readmeCmd,
		changelogCmd,
		notifyCmd,
		gapCmd,
		syncCmd,
		selectCmd,
		generateCmd,
		mcpCmd,
		scheduleCmd,
		versionCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	finishCommand(ctx)
	if err != nil {
		if !errors.Is(err, errSilent) {
			presenter.Error(err, "")
		}
		stop()
		os.Exit(1)
	}
}
