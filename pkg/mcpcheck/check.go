// Package mcpcheck verifies that the MCP servers listed in a client
// configuration start, complete the initialize handshake and list tools.
package mcpcheck

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/version"
)

// DefaultTimeout bounds a single server check
const DefaultTimeout = 30 * time.Second

// Result is the outcome of checking one server
type Result struct {
	Name          string
	Type          ServerType
	ServerName    string
	ServerVersion string
	Tools         []string
	Elapsed       time.Duration
	Err           error
}

// OK reports whether the server passed
func (r Result) OK() bool {
	return r.Err == nil
}

// NewClient creates an unstarted mcp-go client for cfg
func NewClient(cfg ServerConfig) (*client.Client, error) {
	serverType, err := cfg.ResolvedType()
	if err != nil {
		return nil, err
	}

	switch serverType {
	case ServerTypeStdio:
		if cfg.Command == "" {
			return nil, errors.New("command is required for stdio server")
		}
		env := make([]string, 0, len(cfg.Env))
		for k, v := range cfg.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		sort.Strings(env)
		return client.NewClient(transport.NewStdio(cfg.Command, env, cfg.Args...)), nil
	case ServerTypeSSE:
		if cfg.URL == "" {
			return nil, errors.New("url is required for sse server")
		}
		tp, err := transport.NewSSE(cfg.URL, transport.WithHeaders(cfg.Headers))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create sse transport")
		}
		return client.NewClient(tp), nil
	default:
		return nil, errors.Errorf("unsupported server type %q", serverType)
	}
}

// Check starts the server, initializes a session and lists its tools
func Check(ctx context.Context, name string, cfg ServerConfig, timeout time.Duration) (res Result) {
	res = Result{Name: name}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	res.Type, res.Err = cfg.ResolvedType()
	if res.Err != nil {
		return res
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := logger.G(ctx).WithField("server", name)

	c, err := NewClient(cfg)
	if err != nil {
		res.Err = err
		return res
	}
	if err := c.Start(ctx); err != nil {
		res.Err = errors.Wrap(err, "failed to start")
		return res
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.WithError(err).Debug("failed to close mcp client")
		}
	}()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "skillctl",
		Version: version.Version,
	}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initResult, err := c.Initialize(ctx, initReq)
	if err != nil {
		res.Err = errors.Wrap(err, "initialize failed")
		return res
	}
	res.ServerName = initResult.ServerInfo.Name
	res.ServerVersion = initResult.ServerInfo.Version

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		res.Err = errors.Wrap(err, "list tools failed")
		return res
	}
	for _, tool := range tools.Tools {
		res.Tools = append(res.Tools, tool.GetName())
	}
	sort.Strings(res.Tools)

	log.WithField("tools", len(res.Tools)).Debug("mcp server check passed")
	return res
}

// CheckAll checks every server in cfg concurrently, or only the one named
// only when it is set. Results are ordered by server name.
func CheckAll(ctx context.Context, cfg *Config, only string, timeout time.Duration) ([]Result, error) {
	names := cfg.Names()
	if only != "" {
		if _, ok := cfg.Servers[only]; !ok {
			return nil, errors.Errorf("server '%s' not found in config", only)
		}
		names = []string{only}
	}

	results := make([]Result, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			results[i] = Check(ctx, name, cfg.Servers[name], timeout)
			return nil
		})
	}
	g.Wait()

	return results, nil
}
