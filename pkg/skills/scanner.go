package skills

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// DefaultIncludes matches skill files anywhere below the root
var DefaultIncludes = []string{"**/" + SkillFileName}

// DefaultExcludes are directories never descended into
var DefaultExcludes = []string{".git", "node_modules", "__pycache__", "venv", ".env", "dist", "build", ".next"}

// Scanner finds and parses skill documents below a root directory
type Scanner struct {
	includes    []string
	excludes    []string
	concurrency int
}

// ScanOption configures a Scanner
type ScanOption func(*Scanner)

// WithIncludes replaces the include patterns. Patterns are doublestar globs
// matched against slash-separated paths relative to the root.
func WithIncludes(patterns ...string) ScanOption {
	return func(s *Scanner) {
		if len(patterns) > 0 {
			s.includes = patterns
		}
	}
}

// WithExcludes adds exclude patterns. A directory is skipped when its base
// name equals a pattern or its relative path matches it as a glob.
func WithExcludes(patterns ...string) ScanOption {
	return func(s *Scanner) {
		s.excludes = append(s.excludes, patterns...)
	}
}

// WithConcurrency bounds the number of files parsed in parallel
func WithConcurrency(n int) ScanOption {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewScanner creates a scanner with the default include and exclude patterns
func NewScanner(opts ...ScanOption) *Scanner {
	s := &Scanner{
		includes:    DefaultIncludes,
		excludes:    append([]string{}, DefaultExcludes...),
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find returns the slash-separated paths, relative to root, of every matching
// skill file. A skill is named after its directory, so a skill file directly in
// root is not a skill and is skipped.
func (s *Scanner) Find(root string) ([]string, error) {
	var found []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && s.excluded(d.Name(), rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.Contains(rel, "/") && s.included(rel) {
			found = append(found, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", root)
	}

	sort.Strings(found)
	return found, nil
}

func (s *Scanner) excluded(name, rel string) bool {
	for _, pattern := range s.excludes {
		if name == pattern {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) included(rel string) bool {
	for _, pattern := range s.includes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Scan finds and parses every skill file below root. Files that cannot be
// read produce a Document with ReadError set rather than failing the scan.
// Results are sorted by category number, skill name and path.
func (s *Scanner) Scan(ctx context.Context, root string) ([]*Document, error) {
	ctx, span := telemetry.Tracer("skillctl.skills").Start(ctx, "skills.Scan")
	defer span.End()

	paths, err := s.Find(root)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	docs := make([]*Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i] = loadDocument(root, rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "scan interrupted")
	}

	SortDocuments(docs)

	span.SetAttributes(attribute.Int("skills.count", len(docs)))
	logger.G(ctx).WithField("root", root).WithField("count", len(docs)).Debug("scanned skill files")

	return docs, nil
}

func loadDocument(root, rel string) *Document {
	full := filepath.Join(root, filepath.FromSlash(rel))
	content, err := os.ReadFile(full)
	if err != nil {
		return &Document{
			Path:      full,
			RelPath:   rel,
			SkillName: skillNameFromPath(rel),
			Category:  CategoryFromPath(rel),
			ReadError: err.Error(),
		}
	}

	doc := ParseDocument(rel, content)
	doc.Path = full
	return doc
}

// SortDocuments orders documents by category number, skill name and path
func SortDocuments(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if a.Category.Number != b.Category.Number {
			return a.Category.Number < b.Category.Number
		}
		if a.SkillName != b.SkillName {
			return a.SkillName < b.SkillName
		}
		return a.RelPath < b.RelPath
	})
}
