package mcpcheck

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/pkg/errors"
)

// ServerType is the transport used to reach a server
type ServerType string

const (
	ServerTypeStdio ServerType = "stdio"
	ServerTypeSSE   ServerType = "sse"
)

// ServerConfig is one entry of an mcpServers map as written by Claude
// Desktop, Cursor and similar clients
type ServerConfig struct {
	Type    ServerType        `json:"type,omitempty"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// ResolvedType infers the transport when type is omitted
func (c ServerConfig) ResolvedType() (ServerType, error) {
	switch {
	case c.Type != "":
		return c.Type, nil
	case c.URL != "":
		return ServerTypeSSE, nil
	case c.Command != "":
		return ServerTypeStdio, nil
	default:
		return "", errors.New("either command or url is required")
	}
}

// Config is an MCP client configuration file
type Config struct {
	Servers map[string]ServerConfig `json:"mcpServers"`
}

// Names returns the server names in sorted order
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadConfig reads a client configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid MCP config %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes a client configuration. Environment references such as
// ${GITHUB_TOKEN} in env values and headers are expanded.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse MCP config")
	}
	if len(cfg.Servers) == 0 {
		return nil, errors.New("no mcpServers defined")
	}

	for name, server := range cfg.Servers {
		for k, v := range server.Env {
			server.Env[k] = os.ExpandEnv(v)
		}
		for k, v := range server.Headers {
			server.Headers[k] = os.ExpandEnv(v)
		}
		cfg.Servers[name] = server
	}
	return &cfg, nil
}
