package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/manifest"
	"github.com/cerebratechai/skillctl/pkg/presenter"
)

// ScanConfig holds configuration for the scan command
type ScanConfig struct {
	Output string
	Schema bool
}

// NewScanConfig creates a new ScanConfig with default values
func NewScanConfig() *ScanConfig {
	return &ScanConfig{}
}

var scanCmd = withTracing(&cobra.Command{
	Use:   "scan",
	Short: "Build the JSON manifest of all skills",
	Long:  `Scan the skills root for SKILL.md files and print a JSON manifest of their metadata, or write it to --output.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getScanConfigFromFlags(cmd)

		if config.Schema {
			schema, err := manifest.Schema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return nil
		}

		data, err := buildManifest(cmd.Context())
		if err != nil {
			return err
		}
		if config.Output == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		if err := writeManifest(cmd.Context(), config.Output, data); err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("Manifest written to %s", config.Output))
		return nil
	},
})

func init() {
	defaults := NewScanConfig()
	scanCmd.Flags().StringP("output", "o", defaults.Output, "Write the manifest to this file instead of stdout")
	scanCmd.Flags().Bool("schema", defaults.Schema, "Print the JSON schema of the manifest")
}

func getScanConfigFromFlags(cmd *cobra.Command) *ScanConfig {
	config := NewScanConfig()
	config.Output, _ = cmd.Flags().GetString("output")
	config.Schema, _ = cmd.Flags().GetBool("schema")
	return config
}

func buildManifest(ctx context.Context) ([]byte, error) {
	docs, err := scanDocuments(ctx)
	if err != nil {
		return nil, err
	}
	return manifest.Build(docs).JSON()
}

func writeManifest(ctx context.Context, path string, data []byte) error {
	if err := fsutil.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write manifest %s", path)
	}
	logger.G(ctx).WithField("path", path).Debug("manifest written")
	return nil
}

// manifestTask writes skills.json, or args["output"], for scheduled runs
func manifestTask(ctx context.Context, args map[string]string) error {
	data, err := buildManifest(ctx)
	if err != nil {
		return err
	}
	return writeManifest(ctx, argOr(args, "output", defaultManifestPath()), data)
}

func defaultManifestPath() string {
	return rootPath("skills.json")
}

func argOr(args map[string]string, key, fallback string) string {
	if v, ok := args[key]; ok && v != "" {
		return v
	}
	return fallback
}
