package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cerebratechai/skillctl/pkg/mcpcheck"
	"github.com/cerebratechai/skillctl/pkg/mcpserver"
	"github.com/cerebratechai/skillctl/pkg/presenter"
	"github.com/cerebratechai/skillctl/pkg/validate"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the skills catalogue over MCP and check MCP client configurations",
}

// MCPServeConfig holds configuration for the mcp serve command
type MCPServeConfig struct {
	Addr string
}

// NewMCPServeConfig creates a new MCPServeConfig with default values
func NewMCPServeConfig() *MCPServeConfig {
	return &MCPServeConfig{}
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the skills MCP server",
	Long: `Expose the skills catalogue to MCP clients through the list_skills, get_skill,
search_skills, recommend_skills and validate_skill tools.

The server speaks stdio by default. With --addr it serves streamable HTTP on /mcp
together with /metrics and /healthz.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getMCPServeConfigFromFlags(cmd)
		ctx := cmd.Context()

		catalogue, err := loadCatalogue(ctx)
		if err != nil {
			return err
		}
		sel, err := loadSelectorCatalogue()
		if err != nil {
			return err
		}
		cfg, err := validateConfig()
		if err != nil {
			return err
		}
		validator, err := validate.New(validate.ModeStructure, cfg)
		if err != nil {
			return err
		}

		svc := mcpserver.NewService(catalogue, sel, validator)
		if config.Addr == "" {
			return mcpserver.ServeStdio(ctx, svc)
		}
		return mcpserver.ServeHTTP(ctx, svc, config.Addr)
	},
}

var mcpConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print an mcpServers snippet that launches this server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		command, err := os.Executable()
		if err != nil {
			command = "skillctl"
		}
		snippet, err := mcpserver.ConfigSnippet(command, "--root", rootDir(), "mcp", "serve")
		if err != nil {
			return errors.Wrap(err, "failed to render MCP config")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(snippet))
		return nil
	},
}

// MCPCheckConfig holds configuration for the mcp check command
type MCPCheckConfig struct {
	Config  string
	Server  string
	Timeout time.Duration
}

// NewMCPCheckConfig creates a new MCPCheckConfig with default values
func NewMCPCheckConfig() *MCPCheckConfig {
	return &MCPCheckConfig{
		Timeout: mcpcheck.DefaultTimeout,
	}
}

var mcpCheckCmd = withTracing(&cobra.Command{
	Use:   "check",
	Short: "Connect to the MCP servers of a client configuration and list their tools",
	Long: `Read a client configuration in the mcpServers format used by Claude Desktop and Cursor,
start or connect to each server, initialize it and list its tools.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getMCPCheckConfigFromFlags(cmd)
		if config.Config == "" {
			return errors.New("--config is required")
		}

		cfg, err := mcpcheck.LoadConfig(config.Config)
		if err != nil {
			return err
		}
		results, err := mcpcheck.CheckAll(cmd.Context(), cfg, config.Server, config.Timeout)
		if err != nil {
			return err
		}

		var failed int
		for _, res := range results {
			if !res.OK() {
				failed++
				presenter.Error(res.Err, fmt.Sprintf("%s (%s)", res.Name, res.Type))
				continue
			}
			presenter.Success(fmt.Sprintf("%s (%s): %s %s, %d tools in %s",
				res.Name, res.Type, res.ServerName, res.ServerVersion, len(res.Tools), res.Elapsed.Round(time.Millisecond)))
			if len(res.Tools) > 0 {
				presenter.Bullet(strings.Join(res.Tools, ", "))
			}
		}

		if failed > 0 {
			presenter.Warning(fmt.Sprintf("%d of %d MCP servers failed", failed, len(results)))
			return errSilent
		}
		return nil
	},
})

func init() {
	serveDefaults := NewMCPServeConfig()
	mcpServeCmd.Flags().String("addr", serveDefaults.Addr, "Serve streamable HTTP on this address, e.g. :8080")

	checkDefaults := NewMCPCheckConfig()
	mcpCheckCmd.Flags().StringP("config", "c", checkDefaults.Config, "MCP client configuration file")
	mcpCheckCmd.Flags().String("server", checkDefaults.Server, "Only check this server")
	mcpCheckCmd.Flags().Duration("timeout", checkDefaults.Timeout, "Timeout for each server")
	bindMCPFlags()

	mcpCmd.AddCommand(mcpServeCmd, mcpConfigCmd, mcpCheckCmd)
}

func bindMCPFlags() {
	viper.BindPFlag("mcp.addr", mcpServeCmd.Flags().Lookup("addr"))
	viper.BindPFlag("mcp.config", mcpCheckCmd.Flags().Lookup("config"))
	viper.BindPFlag("mcp.timeout", mcpCheckCmd.Flags().Lookup("timeout"))
}

func getMCPServeConfigFromFlags(_ *cobra.Command) *MCPServeConfig {
	config := NewMCPServeConfig()
	config.Addr = viper.GetString("mcp.addr")
	return config
}

func getMCPCheckConfigFromFlags(cmd *cobra.Command) *MCPCheckConfig {
	config := NewMCPCheckConfig()
	config.Config = viper.GetString("mcp.config")
	config.Server, _ = cmd.Flags().GetString("server")
	if timeout := viper.GetDuration("mcp.timeout"); timeout > 0 {
		config.Timeout = timeout
	}
	return config
}
