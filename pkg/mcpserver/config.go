package mcpserver

import (
	"encoding/json"

	"github.com/cerebratechai/skillctl/pkg/mcpcheck"
)

// ConfigServerName is the key used for skillctl in a client's mcpServers map
const ConfigServerName = "skills"

// ConfigSnippet returns an mcpServers block that launches command with args
// over stdio, ready to paste into a client configuration
func ConfigSnippet(command string, args ...string) ([]byte, error) {
	cfg := mcpcheck.Config{Servers: map[string]mcpcheck.ServerConfig{
		ConfigServerName: {Command: command, Args: args},
	}}
	return json.MarshalIndent(cfg, "", "  ")
}
