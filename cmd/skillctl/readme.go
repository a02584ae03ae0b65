package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/manifest"
	"github.com/cerebratechai/skillctl/pkg/presenter"
	"github.com/cerebratechai/skillctl/pkg/readme"
)

// ReadmeConfig holds configuration for the readme command
type ReadmeConfig struct {
	Manifest string
	Readme   string
	DryRun   bool
}

// NewReadmeConfig creates a new ReadmeConfig with default values
func NewReadmeConfig() *ReadmeConfig {
	return &ReadmeConfig{
		Manifest: "skills.json",
		Readme:   "README.md",
	}
}

var readmeCmd = withTracing(&cobra.Command{
	Use:   "readme",
	Short: "Regenerate the skills table in README.md",
	Long: `Replace the block between <!-- SKILLS-START --> and <!-- SKILLS-END --> in the README with
a table of all skills grouped by category. The table is built from --manifest when
that file exists, otherwise from a fresh scan.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getReadmeConfigFromFlags(cmd)
		ctx := cmd.Context()

		m, err := loadOrBuildManifest(ctx, config.Manifest)
		if err != nil {
			return err
		}
		table := readme.Table(m)

		if config.DryRun {
			current, updated, err := readme.Render(config.Readme, table)
			if err != nil {
				return err
			}
			if current == updated {
				presenter.Info("README is up to date")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), readme.Diff(config.Readme, current, updated))
			return nil
		}

		created, err := readme.Write(config.Readme, table)
		if err != nil {
			return err
		}
		if created {
			presenter.Success(fmt.Sprintf("Created %s with %d skills", config.Readme, m.Total))
		} else {
			presenter.Success(fmt.Sprintf("Updated %s with %d skills", config.Readme, m.Total))
		}
		return nil
	},
})

func init() {
	defaults := NewReadmeConfig()
	readmeCmd.Flags().String("manifest", defaults.Manifest, "Manifest produced by 'skillctl scan --output'")
	readmeCmd.Flags().String("readme", defaults.Readme, "README file to update")
	readmeCmd.Flags().Bool("dry-run", defaults.DryRun, "Print a unified diff instead of writing")
}

func getReadmeConfigFromFlags(cmd *cobra.Command) *ReadmeConfig {
	config := NewReadmeConfig()
	config.Manifest, _ = cmd.Flags().GetString("manifest")
	config.Readme, _ = cmd.Flags().GetString("readme")
	config.DryRun, _ = cmd.Flags().GetBool("dry-run")
	return config
}

func loadOrBuildManifest(ctx context.Context, path string) (*manifest.Manifest, error) {
	if path != "" && fsutil.Exists(path) {
		logger.G(ctx).WithField("manifest", path).Debug("using existing manifest")
		return manifest.Load(path)
	}
	docs, err := scanDocuments(ctx)
	if err != nil {
		return nil, err
	}
	return manifest.Build(docs), nil
}

func readmeTask(ctx context.Context, args map[string]string) error {
	m, err := loadOrBuildManifest(ctx, args["manifest"])
	if err != nil {
		return err
	}
	_, err = readme.Write(argOr(args, "readme", rootPath("README.md")), readme.Table(m))
	return err
}
