package gap

import (
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// DefaultMapping maps well-known libraries to the skill documenting them
var DefaultMapping = map[string]string{
	"react":       "react-best-practices",
	"next":        "nextjs-patterns",
	"express":     "express-rest",
	"fastapi":     "fastapi-patterns",
	"prisma":      "prisma-guide",
	"mongoose":    "mongodb-patterns",
	"sequelize":   "database-migration",
	"redux":       "state-management",
	"zustand":     "state-management",
	"tailwindcss": "tailwind-patterns",
	"jest":        "jest-patterns",
	"pytest":      "pytest-patterns",
	"docker":      "docker-patterns",
	"kubernetes":  "kubernetes-deployment",
	"terraform":   "terraform-infrastructure",
	"stripe":      "stripe-integration",
	"firebase":    "firebase-integration",
	"socket.io":   "websocket-patterns",
	"kafka":       "kafka-streams",
	"rabbitmq":    "rabbitmq-patterns",
	"pydantic":    "python-standards",
	"pandas":      "data-preprocessing",
	"numpy":       "data-preprocessing",
	"pytorch":     "pytorch-deployment",
	"tensorflow":  "model-training",
	"openai":      "llm-integration",
	"langchain":   "ai-agents",
}

// DefaultIgnore lists unmapped libraries that are never reported as gaps
var DefaultIgnore = []string{"react-dom", "react-scripts"}

// PatternRule maps every library matching a glob such as "@aws-sdk/*" to a skill
type PatternRule struct {
	Pattern string `mapstructure:"pattern"`
	Skill   string `mapstructure:"skill"`
}

type compiledRule struct {
	glob  glob.Glob
	skill string
}

// Mapper resolves a library name to the skill expected to cover it
type Mapper struct {
	exact    map[string]string
	patterns []compiledRule
}

// NewMapper builds a Mapper from the default table, extra exact entries and
// pattern rules. Exact entries override the defaults.
func NewMapper(extra map[string]string, rules []PatternRule) (*Mapper, error) {
	m := &Mapper{exact: make(map[string]string, len(DefaultMapping)+len(extra))}
	for lib, skill := range DefaultMapping {
		m.exact[lib] = skill
	}
	for lib, skill := range extra {
		m.exact[lib] = skill
	}

	for _, r := range rules {
		g, err := glob.Compile(r.Pattern, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "invalid mapping pattern %q", r.Pattern)
		}
		m.patterns = append(m.patterns, compiledRule{glob: g, skill: r.Skill})
	}
	return m, nil
}

// Lookup returns the mapped skill for lib. Exact entries win over patterns;
// patterns are tried in configuration order.
func (m *Mapper) Lookup(lib string) (string, bool) {
	if skill, ok := m.exact[lib]; ok {
		return skill, true
	}
	for _, p := range m.patterns {
		if p.glob.Match(lib) {
			return p.skill, true
		}
	}
	return "", false
}
