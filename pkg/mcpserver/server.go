// Package mcpserver exposes the skill catalogue to MCP clients over stdio
// or streamable HTTP.
package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/metrics"
	"github.com/cerebratechai/skillctl/pkg/telemetry"
	"github.com/cerebratechai/skillctl/pkg/version"
)

// ServerName is the implementation name reported to clients
const ServerName = "skillctl"

// NewServer creates an MCP server with the skill tools registered
func NewServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version.Get().Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_skills",
		Description: "List the skills in the catalogue with their path, title, description and category. Optionally filter by category.",
	}, instrument("list_skills", svc.ListSkills))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_skill",
		Description: "Return the full markdown content of a skill, looked up by name or by category/skill path.",
	}, instrument("get_skill", svc.GetSkill))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_skills",
		Description: "Search skills by keyword across names, titles, descriptions and categories.",
	}, instrument("search_skills", svc.SearchSkills))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recommend_skills",
		Description: "Recommend essential, important and optional skills for a project type. Project types:" + svc.projectTypesHelp(),
	}, instrument("recommend_skills", svc.RecommendSkills))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_skill",
		Description: "Check a skill for required sections, code examples, a checklist and front matter.",
	}, instrument("validate_skill", svc.ValidateSkill))

	return server
}

func instrument[In, Out any](name string, handler mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		var (
			result *mcp.CallToolResult
			out    Out
		)
		start := time.Now()
		err := telemetry.WithSpan(ctx, "mcp."+name, func(ctx context.Context) error {
			var err error
			result, out, err = handler(ctx, req, in)
			return err
		}, attribute.String("mcp.tool", name))

		metrics.ToolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		metrics.ToolCalls.WithLabelValues(name, metrics.Result(err)).Inc()
		if err != nil {
			logger.G(ctx).WithError(err).WithField("tool", name).Debug("tool call failed")
		}
		return result, out, err
	}
}

// ServeStdio serves MCP over stdin and stdout until the client disconnects or ctx is done
func ServeStdio(ctx context.Context, svc *Service) error {
	logger.G(ctx).Info("serving MCP over stdio")
	return NewServer(svc).Run(ctx, &mcp.StdioTransport{})
}

// NewRouter routes /mcp to the streamable HTTP handler alongside /metrics and /healthz
func NewRouter(server *mcp.Server) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil))
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	return r
}

// ServeHTTP serves MCP over streamable HTTP on addr until ctx is done
func ServeHTTP(ctx context.Context, svc *Service, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(NewServer(svc)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.G(ctx).WithField("addr", addr).Info("serving MCP over HTTP")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "mcp http server failed")
	}
	return nil
}
