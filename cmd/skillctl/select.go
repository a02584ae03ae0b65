package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cerebratechai/skillctl/pkg/presenter"
	"github.com/cerebratechai/skillctl/pkg/selector"
)

// SelectConfig holds configuration for the select command and its subcommands
type SelectConfig struct {
	Output string
	Save   bool
}

// NewSelectConfig creates a new SelectConfig with default values
func NewSelectConfig() *SelectConfig {
	return &SelectConfig{
		Output: ".",
	}
}

// loadSelectorCatalogue uses select.catalogue when set, otherwise the built-in catalogue
func loadSelectorCatalogue() (*selector.Catalogue, error) {
	if path := viper.GetString("select.catalogue"); path != "" {
		return selector.Load(path)
	}
	return selector.Default()
}

var selectCmd = withTracing(&cobra.Command{
	Use:   "select",
	Short: "Pick the skills that fit a project type",
	Long:  `Without a subcommand, open the interactive selector. Subcommands print the same information non-interactively.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getSelectConfigFromFlags(cmd)
		ctx := cmd.Context()

		c, err := loadSelectorCatalogue()
		if err != nil {
			return err
		}
		docs, err := scanDocuments(ctx)
		if err != nil {
			return err
		}
		return selector.Run(ctx, c, docs, config.Output)
	},
})

var selectTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the project types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadSelectorCatalogue()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), selector.RenderProjectTypes(c))
		return nil
	},
}

var selectRecommendCmd = &cobra.Command{
	Use:   "recommend <project-type>",
	Short: "Show the recommended skills for a project type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getSelectConfigFromFlags(cmd)

		c, err := loadSelectorCatalogue()
		if err != nil {
			return err
		}
		p, err := c.Recommend(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), selector.RenderProject(p))

		if config.Save {
			path, err := p.WriteSkillList(config.Output)
			if err != nil {
				return err
			}
			presenter.Success(fmt.Sprintf("Skill list saved to: %s", path))
		}
		return nil
	},
}

var selectCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List all skill categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadSelectorCatalogue()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), selector.RenderCategories(c))
		return nil
	},
}

var selectSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search categories and skills by keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadSelectorCatalogue()
		if err != nil {
			return err
		}
		docs, err := scanDocuments(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), selector.RenderSearch(c, docs, strings.Join(args, " ")))
		return nil
	},
}

var selectPromptCmd = &cobra.Command{
	Use:   "prompt <project-type>",
	Short: "Generate the Claude prompt for a project type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getSelectConfigFromFlags(cmd)

		c, err := loadSelectorCatalogue()
		if err != nil {
			return err
		}
		p, err := c.Recommend(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.Prompt())

		if config.Save {
			path, err := p.WritePrompt(config.Output)
			if err != nil {
				return err
			}
			presenter.Success(fmt.Sprintf("Prompt saved to: %s", path))
		}
		return nil
	},
}

func init() {
	defaults := NewSelectConfig()
	selectCmd.PersistentFlags().StringP("output", "o", defaults.Output, "Directory for saved skill lists and prompts")
	selectCmd.PersistentFlags().Bool("save", defaults.Save, "Save the skill list or prompt to the output directory")

	selectCmd.AddCommand(selectTypesCmd, selectRecommendCmd, selectCategoriesCmd, selectSearchCmd, selectPromptCmd)
}

func getSelectConfigFromFlags(cmd *cobra.Command) *SelectConfig {
	config := NewSelectConfig()
	config.Output, _ = cmd.Flags().GetString("output")
	config.Save, _ = cmd.Flags().GetBool("save")
	return config
}
