package codeblocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/metrics"
	"github.com/cerebratechai/skillctl/pkg/osutil"
	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/cerebratechai/skillctl/pkg/telemetry"
	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTimeout bounds a single external validator run
	DefaultTimeout = 10 * time.Second
	// maxMessageLen is the number of characters kept from a validator error
	maxMessageLen = 100
)

// Config holds the code example validation settings
type Config struct {
	Timeout     time.Duration     `mapstructure:"timeout"`
	Concurrency int               `mapstructure:"concurrency"`
	Commands    map[string]string `mapstructure:"commands"`
}

// DefaultCommands are the external validators, keyed by fence language.
// The block's temporary file path is appended to the split command line.
var DefaultCommands = map[string]string{
	"python": "python3 -m py_compile",
	"bash":   "bash -n",
	"sh":     "bash -n",
}

// DefaultConfig returns the default validation settings
func DefaultConfig() Config {
	return Config{
		Timeout:     DefaultTimeout,
		Concurrency: 4,
		Commands:    DefaultCommands,
	}
}

type language struct {
	extension string
	builtin   func([]byte) error
	command   []string
}

var extensions = map[string]string{
	"python": ".py",
	"json":   ".json",
	"bash":   ".sh",
	"sh":     ".sh",
	"yaml":   ".yaml",
	"yml":    ".yaml",
}

// FileResult is the outcome of validating one skill document
type FileResult struct {
	Path    string
	Blocks  int
	Checked int
	Errors  []string
}

// OK reports whether every checked block passed
func (r FileResult) OK() bool {
	return len(r.Errors) == 0
}

// Summary aggregates a validation run
type Summary struct {
	Files   int
	Blocks  int
	Checked int
	Failed  int
	// Skipped lists languages whose validator executable is not installed
	Skipped []string
}

// Checker syntax-checks fenced code blocks
type Checker struct {
	languages   map[string]language
	skipped     map[string]bool
	timeout     time.Duration
	concurrency int
}

// NewChecker resolves the validators in cfg. External validators whose
// executable is missing from PATH are recorded as skipped.
func NewChecker(ctx context.Context, cfg Config) (*Checker, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	c := &Checker{
		languages: map[string]language{
			"json": {extension: ".json", builtin: validateJSON},
			"yaml": {extension: ".yaml", builtin: validateYAML},
			"yml":  {extension: ".yaml", builtin: validateYAML},
		},
		skipped:     map[string]bool{},
		timeout:     cfg.Timeout,
		concurrency: cfg.Concurrency,
	}

	commands := cfg.Commands
	if commands == nil {
		commands = DefaultCommands
	}
	for lang, line := range commands {
		argv, err := shellquote.Split(line)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid validator command for %s", lang)
		}
		if len(argv) == 0 {
			continue
		}
		if !osutil.LookPath(argv[0]) {
			logger.G(ctx).WithField("language", lang).WithField("command", argv[0]).
				Warn("validator not installed, skipping language")
			c.skipped[lang] = true
			continue
		}
		ext, ok := extensions[lang]
		if !ok {
			ext = "." + lang
		}
		c.languages[lang] = language{extension: ext, command: argv}
	}

	return c, nil
}

// Supports reports whether blocks in lang are validated
func (c *Checker) Supports(lang string) bool {
	_, ok := c.languages[lang]
	return ok
}

type job struct {
	doc   int
	index int
	block skills.CodeBlock
}

// CheckAll validates every supported block of docs. Results follow the
// order of docs and, within a file, the order of the blocks.
func (c *Checker) CheckAll(ctx context.Context, docs []*skills.Document) ([]FileResult, Summary) {
	ctx, span := telemetry.Tracer("skillctl.codeblocks").Start(ctx, "codeblocks.check_all")
	defer span.End()

	results := make([]FileResult, len(docs))
	var jobs []job
	for i, doc := range docs {
		results[i] = FileResult{Path: doc.RelPath, Blocks: len(doc.CodeBlocks)}
		for j, block := range doc.CodeBlocks {
			if c.Supports(block.Language) {
				jobs = append(jobs, job{doc: i, index: j + 1, block: block})
			}
		}
	}

	messages := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for k, jb := range jobs {
		g.Go(func() error {
			if err := c.check(gctx, jb.block); err != nil {
				lang := jb.block.Language
				if lang == "" {
					lang = "unknown"
				}
				messages[k] = fmt.Sprintf("Code block #%d (%s): %s", jb.index, lang, truncate(err.Error(), maxMessageLen))
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{Files: len(docs), Checked: len(jobs)}
	for k, jb := range jobs {
		results[jb.doc].Checked++
		if messages[k] != "" {
			results[jb.doc].Errors = append(results[jb.doc].Errors, messages[k])
		}
	}
	for _, r := range results {
		summary.Blocks += r.Blocks
		if !r.OK() {
			summary.Failed++
		}
	}
	for lang := range c.skipped {
		summary.Skipped = append(summary.Skipped, lang)
	}
	sort.Strings(summary.Skipped)

	span.SetAttributes(
		attribute.Int("codeblocks.checked", summary.Checked),
		attribute.Int("codeblocks.failed_files", summary.Failed),
	)

	return results, summary
}

// Check validates a single block
func (c *Checker) Check(ctx context.Context, block skills.CodeBlock) error {
	return c.check(ctx, block)
}

func (c *Checker) check(ctx context.Context, block skills.CodeBlock) (err error) {
	lang, ok := c.languages[block.Language]
	if !ok {
		return nil
	}
	defer func() {
		metrics.CodeBlocks.WithLabelValues(block.Language, metrics.Result(err)).Inc()
	}()
	if lang.builtin != nil {
		return lang.builtin([]byte(block.Code))
	}

	f, err := os.CreateTemp("", "skill-example-*"+lang.extension)
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(block.Code); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to write temporary file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to close temporary file")
	}

	args := append(append([]string{}, lang.command[1:]...), f.Name())
	res, err := osutil.Run(ctx, "", c.timeout, nil, lang.command[0], args...)
	if errors.Is(err, osutil.ErrTimeout) {
		return errors.New("Validation timed out")
	}
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(res.Stdout)
		}
		return errors.New(msg)
	}
	return nil
}

func validateJSON(data []byte) error {
	var v any
	return json.Unmarshal(data, &v)
}

func validateYAML(data []byte) error {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	for {
		var v any
		err := dec.Decode(&v)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
