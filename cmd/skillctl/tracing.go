package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cerebratechai/skillctl/pkg/telemetry"
	"github.com/cerebratechai/skillctl/pkg/version"
)

var (
	tracer          = telemetry.Tracer("skillctl.cli")
	tracingShutdown func(context.Context) error
)

// initTracing initializes the OpenTelemetry tracing system from the tracing section
func initTracing(ctx context.Context) (func(context.Context) error, error) {
	config := telemetry.Config{
		Enabled:        viper.GetBool("tracing.enabled"),
		ServiceName:    "skillctl",
		ServiceVersion: version.Get().Version,
		SamplerType:    viper.GetString("tracing.sampler"),
		SamplerRatio:   viper.GetFloat64("tracing.ratio"),
		Endpoint:       viper.GetString("tracing.endpoint"),
	}
	return telemetry.InitTracer(ctx, config)
}

// withTracing wraps a command's RunE in a cli.command span
func withTracing(cmd *cobra.Command) *cobra.Command {
	originalRunE := cmd.RunE

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		attrs := []attribute.KeyValue{
			attribute.String("command.name", cmd.Name()),
			attribute.String("command.path", cmd.CommandPath()),
			attribute.Int("args.count", len(args)),
		}
		attrs = append(attrs, flagAttributes(cmd.Flags())...)

		ctx, span := tracer.Start(cmd.Context(), "cli.command", trace.WithAttributes(attrs...))
		defer span.End()
		cmd.SetContext(ctx)

		if err := originalRunE(cmd, args); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
		return nil
	}
	return cmd
}

// flagAttributes records the flags set on the command line, leaving out those
// whose names suggest a secret.
func flagAttributes(flags *pflag.FlagSet) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	flags.Visit(func(flag *pflag.Flag) {
		if sensitiveFlag(flag.Name) {
			return
		}
		attrs = append(attrs, attribute.String("flag."+flag.Name, flag.Value.String()))
	})
	return attrs
}

func sensitiveFlag(name string) bool {
	name = strings.ToLower(name)
	for _, word := range []string{"password", "token", "key", "secret", "webhook", "auth"} {
		if strings.Contains(name, word) {
			return true
		}
	}
	return false
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Bool("tracing-enabled", false, "Enable OpenTelemetry tracing")
	flags.String("tracing-sampler", "ratio", "Tracing sampler type (always, never, ratio)")
	flags.Float64("tracing-ratio", 1, "Sampling ratio when using ratio sampler")
	bindTracingFlags()
}

func bindTracingFlags() {
	flags := rootCmd.PersistentFlags()
	viper.BindPFlag("tracing.enabled", flags.Lookup("tracing-enabled"))
	viper.BindPFlag("tracing.sampler", flags.Lookup("tracing-sampler"))
	viper.BindPFlag("tracing.ratio", flags.Lookup("tracing-ratio"))
}
