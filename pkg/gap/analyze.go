// Package gap audits a project's dependencies against the skill catalogue
// and reports libraries that no skill covers.
package gap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/cerebratechai/skillctl/pkg/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds the gap analysis settings
type Config struct {
	// Mapping adds or overrides exact library to skill entries
	Mapping map[string]string `mapstructure:"mapping"`
	// Patterns map globs of library names to skills
	Patterns []PatternRule `mapstructure:"patterns"`
	// Ignore replaces DefaultIgnore when set
	Ignore []string `mapstructure:"ignore"`
	// Debounce is the quiet period before a watched change triggers analysis
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultConfig returns the default gap analysis settings
func DefaultConfig() Config {
	return Config{
		Ignore:   DefaultIgnore,
		Debounce: 2 * time.Second,
	}
}

// Finding pairs a library with either the skill covering it or a description of the gap
type Finding struct {
	Library string
	Detail  string
}

// Result is the outcome of analysing one target directory
type Result struct {
	Target       string
	Dependencies []string
	Gaps         []Finding
	Covered      []Finding
}

// Analyzer classifies dependencies against the known skills
type Analyzer struct {
	mapper *Mapper
	known  map[string]struct{}
	ignore map[string]bool
}

// NewAnalyzer builds an Analyzer for the given set of known skill names
func NewAnalyzer(cfg Config, known map[string]struct{}) (*Analyzer, error) {
	mapper, err := NewMapper(cfg.Mapping, cfg.Patterns)
	if err != nil {
		return nil, err
	}

	ignoreList := cfg.Ignore
	if ignoreList == nil {
		ignoreList = DefaultIgnore
	}
	ignore := make(map[string]bool, len(ignoreList))
	for _, lib := range ignoreList {
		ignore[lib] = true
	}

	return &Analyzer{mapper: mapper, known: known, ignore: ignore}, nil
}

// Classify sorts deps into gaps and covered libraries
func (a *Analyzer) Classify(deps []string) (gaps, covered []Finding) {
	for _, lib := range deps {
		if skill, ok := a.mapper.Lookup(lib); ok {
			if _, known := a.known[skill]; known {
				covered = append(covered, Finding{Library: lib, Detail: skill})
			} else {
				gaps = append(gaps, Finding{Library: lib, Detail: fmt.Sprintf("Mapped to '%s' but skill not found in Index", skill)})
			}
			continue
		}

		if a.ignore[lib] {
			continue
		}
		if _, known := a.known[lib]; known {
			covered = append(covered, Finding{Library: lib, Detail: lib})
		} else {
			gaps = append(gaps, Finding{Library: lib, Detail: "No specific skill mapped"})
		}
	}

	sortFindings(gaps)
	sortFindings(covered)
	return gaps, covered
}

// Analyze scans target for dependencies and classifies them
func (a *Analyzer) Analyze(ctx context.Context, target string) (*Result, error) {
	ctx, span := telemetry.Tracer("skillctl.gap").Start(ctx, "gap.analyze")
	defer span.End()

	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve target %s", target)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to access target %s", target)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("target %s is not a directory", target)
	}

	logger.G(ctx).WithField("target", abs).Info("scanning dependencies")
	deps := ScanDependencies(ctx, abs)
	gaps, covered := a.Classify(deps)

	span.SetAttributes(
		attribute.Int("gap.dependencies", len(deps)),
		attribute.Int("gap.gaps", len(gaps)),
		attribute.Int("gap.covered", len(covered)),
	)

	return &Result{Target: abs, Dependencies: deps, Gaps: gaps, Covered: covered}, nil
}

func sortFindings(fs []Finding) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].Library != fs[j].Library {
			return fs[i].Library < fs[j].Library
		}
		return fs[i].Detail < fs[j].Detail
	})
}

// KnownSkills loads the skill names registered in the index. When the index
// is missing it falls back to the names of the skills scanned under root and
// reports fromIndex as false.
func KnownSkills(ctx context.Context, root, indexPath string) (names map[string]struct{}, fromIndex bool, err error) {
	if indexPath == "" {
		indexPath = filepath.Join(root, skills.IndexFileName)
	}

	names, err = skills.LoadIndex(indexPath)
	if err == nil {
		logger.G(ctx).WithField("count", len(names)).Info("loaded known skills")
		return names, true, nil
	}
	if !os.IsNotExist(errors.Cause(err)) {
		return nil, false, err
	}

	logger.G(ctx).WithField("index", indexPath).Warn("skill index not found, falling back to scanned skills")
	docs, err := skills.NewScanner().Scan(ctx, root)
	if err != nil {
		return nil, false, err
	}
	return skills.NameSet(docs), false, nil
}
