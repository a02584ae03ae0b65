package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/presenter"
	"github.com/cerebratechai/skillctl/pkg/validate"
)

// ValidateConfig holds configuration for the validate command
type ValidateConfig struct {
	Mode    validate.Mode
	Verbose bool
}

// NewValidateConfig creates a new ValidateConfig with default values
func NewValidateConfig() *ValidateConfig {
	return &ValidateConfig{
		Mode: validate.ModeStructure,
	}
}

var validateCmd = withTracing(&cobra.Command{
	Use:       "validate [structure|sections]",
	Short:     "Validate the structure of every SKILL.md",
	ValidArgs: []string{string(validate.ModeStructure), string(validate.ModeSections)},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getValidateConfigFromFlags(cmd, args)
		ctx := cmd.Context()

		cfg, err := validateConfig()
		if err != nil {
			return err
		}
		validator, err := validate.New(config.Mode, cfg)
		if err != nil {
			return err
		}

		docs, err := scanDocuments(ctx)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			presenter.Warning("No SKILL.md files found")
			return nil
		}

		results := validator.ValidateAll(ctx, docs)

		if config.Verbose {
			for _, r := range results {
				if len(r.MissingOptional) > 0 {
					presenter.Info(fmt.Sprintf("%s: optional sections missing: %s", r.Path, strings.Join(r.MissingOptional, ", ")))
				}
			}
		}

		verr := validate.Errors(results)
		if verr == nil {
			presenter.Success(fmt.Sprintf("All %d skill files passed %s validation", len(results), config.Mode))
			return nil
		}

		failed := validate.Failed(results)
		presenter.Section(fmt.Sprintf("%d of %d skill files failed %s validation", len(failed), len(results), config.Mode))
		for _, line := range strings.Split(verr.Error(), "\n") {
			presenter.Bullet(line)
		}
		return errSilent
	},
})

func init() {
	validateCmd.Flags().BoolP("verbose", "v", false, "Also report missing optional sections")
}

func getValidateConfigFromFlags(cmd *cobra.Command, args []string) *ValidateConfig {
	config := NewValidateConfig()
	if len(args) > 0 {
		config.Mode = validate.Mode(args[0])
	}
	config.Verbose, _ = cmd.Flags().GetBool("verbose")
	return config
}
