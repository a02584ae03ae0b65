// Package metrics holds the prometheus collectors shared by the generator,
// the code-block validator and the MCP server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skillctl"

var (
	registry = prometheus.NewRegistry()

	// GeneratedSkills counts generation attempts by provider and outcome.
	GeneratedSkills = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "generator",
		Name:      "skills_total",
		Help:      "Skill generation attempts by provider and result.",
	}, []string{"provider", "result"})

	// GenerationDuration observes the latency of a single provider call.
	GenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "generator",
		Name:      "request_duration_seconds",
		Help:      "Latency of LLM generation requests.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
	}, []string{"provider"})

	// ToolCalls counts MCP tool invocations by tool and outcome.
	ToolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mcp",
		Name:      "tool_calls_total",
		Help:      "MCP tool calls by tool and result.",
	}, []string{"tool", "result"})

	// ToolDuration observes MCP tool handler latency.
	ToolDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "mcp",
		Name:      "tool_duration_seconds",
		Help:      "Latency of MCP tool handlers.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})

	// CodeBlocks counts validated code blocks by language and outcome.
	CodeBlocks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "validate",
		Name:      "code_blocks_total",
		Help:      "Code blocks checked by language and result.",
	}, []string{"language", "result"})
)

func init() {
	registry.MustRegister(GeneratedSkills, GenerationDuration, ToolCalls, ToolDuration, CodeBlocks)
}

// GetRegistry returns the registry holding every skillctl collector
func GetRegistry() *prometheus.Registry {
	return registry
}

// Handler serves the registry in the prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Result maps an error to the "ok" or "error" label value
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
