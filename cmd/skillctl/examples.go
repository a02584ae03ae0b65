package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/codeblocks"
	"github.com/cerebratechai/skillctl/pkg/presenter"
)

var examplesLanguages = []string{"typescript", "python", "javascript"}

// ExamplesExtractConfig holds configuration for the examples extract command
type ExamplesExtractConfig struct {
	Language string
	Output   string
}

// NewExamplesExtractConfig creates a new ExamplesExtractConfig with default values
func NewExamplesExtractConfig() *ExamplesExtractConfig {
	return &ExamplesExtractConfig{
		Output: "extracted-examples",
	}
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Extract and validate the code examples embedded in skills",
}

var examplesExtractCmd = withTracing(&cobra.Command{
	Use:   "extract",
	Short: "Extract code blocks of one language into a buildable project",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getExamplesExtractConfigFromFlags(cmd)

		docs, err := scanDocuments(cmd.Context())
		if err != nil {
			return err
		}

		examples := codeblocks.Extract(docs, config.Language)
		dir, err := codeblocks.Scaffold(config.Output, config.Language, examples, len(docs))
		if err != nil {
			return err
		}

		presenter.Success(fmt.Sprintf("Extracted %d %s examples from %d skill files to %s",
			len(examples), config.Language, len(docs), dir))
		return nil
	},
})

var examplesValidateCmd = withTracing(&cobra.Command{
	Use:   "validate",
	Short: "Syntax-check every code block with the configured validators",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cfg, err := codeblocksConfig()
		if err != nil {
			return err
		}
		checker, err := codeblocks.NewChecker(ctx, cfg)
		if err != nil {
			return err
		}

		docs, err := scanDocuments(ctx)
		if err != nil {
			return err
		}

		results, summary := checker.CheckAll(ctx, docs)
		for _, lang := range summary.Skipped {
			presenter.Warning(fmt.Sprintf("Validator for %s is not installed, skipping", lang))
		}

		var failed int
		for _, r := range results {
			if r.OK() {
				continue
			}
			failed++
			presenter.Section(r.Path)
			for _, msg := range r.Errors {
				presenter.Bullet(msg)
			}
		}

		presenter.Separator()
		presenter.Info(fmt.Sprintf("Files: %d | Code blocks: %d | Checked: %d | Failed: %d",
			summary.Files, summary.Blocks, summary.Checked, summary.Failed))

		if failed > 0 {
			presenter.Error(errors.Errorf("%d files contain invalid code examples", failed), "")
			return errSilent
		}
		presenter.Success("All code examples are valid")
		return nil
	},
})

func init() {
	defaults := NewExamplesExtractConfig()
	examplesExtractCmd.Flags().StringP("language", "l", defaults.Language, "Language to extract (typescript, python, javascript)")
	examplesExtractCmd.Flags().StringP("output", "o", defaults.Output, "Output directory")
	examplesExtractCmd.MarkFlagRequired("language")
	examplesExtractCmd.RegisterFlagCompletionFunc("language", cobra.FixedCompletions(examplesLanguages, cobra.ShellCompDirectiveNoFileComp))

	examplesCmd.AddCommand(examplesExtractCmd, examplesValidateCmd)
}

func getExamplesExtractConfigFromFlags(cmd *cobra.Command) *ExamplesExtractConfig {
	config := NewExamplesExtractConfig()
	config.Language, _ = cmd.Flags().GetString("language")
	config.Output, _ = cmd.Flags().GetString("output")
	return config
}
