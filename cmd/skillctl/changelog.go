package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/changelog"
	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/cerebratechai/skillctl/pkg/gitutil"
	"github.com/cerebratechai/skillctl/pkg/presenter"
)

// ChangelogConfig holds configuration for the changelog command
type ChangelogConfig struct {
	Output     string
	Constraint string
}

// NewChangelogConfig creates a new ChangelogConfig with default values
func NewChangelogConfig() *ChangelogConfig {
	return &ChangelogConfig{
		Output: "CHANGELOG.md",
	}
}

var changelogCmd = withTracing(&cobra.Command{
	Use:   "changelog",
	Short: "Generate CHANGELOG.md from git history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getChangelogConfigFromFlags(cmd)
		ctx := cmd.Context()

		git := gitutil.NewForDir(rootDir())
		if !git.IsRepository(ctx) {
			return errors.Errorf("%s is not a git repository", rootDir())
		}

		content, err := changelog.NewGenerator(git, changelog.Options{Constraint: config.Constraint}).Generate(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), content)
		if err := fsutil.WriteFile(config.Output, []byte(content), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", config.Output)
		}
		presenter.Success(fmt.Sprintf("Changelog written to %s", config.Output))
		return nil
	},
})

func init() {
	defaults := NewChangelogConfig()
	changelogCmd.Flags().StringP("output", "o", defaults.Output, "Changelog file to write")
	changelogCmd.Flags().String("constraint", defaults.Constraint, "Only include tags satisfying this semver constraint, e.g. '>= 1.0'")
}

func getChangelogConfigFromFlags(cmd *cobra.Command) *ChangelogConfig {
	config := NewChangelogConfig()
	config.Output, _ = cmd.Flags().GetString("output")
	config.Constraint, _ = cmd.Flags().GetString("constraint")
	return config
}
