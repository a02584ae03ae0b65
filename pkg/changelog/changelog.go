// Package changelog renders CHANGELOG.md from git tags and conventional commit subjects.
package changelog

import (
	"context"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cerebratechai/skillctl/pkg/gitutil"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/pkg/errors"
)

const (
	// MaxReleases is the number of newest tags rendered
	MaxReleases = 5
	// MaxUnreleased is the number of commits rendered when the repository has no tags
	MaxUnreleased = 50
)

// Categories in rendering order
var Categories = []string{
	"Features",
	"Bug Fixes",
	"Documentation",
	"Refactoring",
	"Tests",
	"Maintenance",
	"Other Changes",
}

// Categorize maps a commit subject to a changelog category
func Categorize(subject string) string {
	s := strings.ToLower(subject)
	switch {
	case strings.HasPrefix(s, "feat") || strings.Contains(s, "add"):
		return "Features"
	case strings.HasPrefix(s, "fix"):
		return "Bug Fixes"
	case strings.HasPrefix(s, "docs"):
		return "Documentation"
	case strings.HasPrefix(s, "refactor"):
		return "Refactoring"
	case strings.HasPrefix(s, "test"):
		return "Tests"
	case strings.HasPrefix(s, "chore") || strings.HasPrefix(s, "ci"):
		return "Maintenance"
	default:
		return "Other Changes"
	}
}

// Release is one rendered section of the changelog
type Release struct {
	Tag     string // empty for Unreleased
	Date    string
	Commits []gitutil.Commit
}

// Options controls which tags are rendered
type Options struct {
	// Constraint keeps only tags that parse as semver and satisfy it
	Constraint string
}

// Generator builds changelogs from a git client
type Generator struct {
	git  *gitutil.Client
	opts Options
}

// NewGenerator creates a changelog generator
func NewGenerator(git *gitutil.Client, opts Options) *Generator {
	return &Generator{git: git, opts: opts}
}

// Releases collects the sections to render. Tag listing failures are treated
// as a repository without tags; log failures leave a release empty.
func (g *Generator) Releases(ctx context.Context) ([]Release, error) {
	log := logger.G(ctx)

	tags, err := g.git.Tags(ctx)
	if err != nil {
		log.WithError(err).Warn("could not list tags, rendering unreleased commits")
		tags = nil
	}

	tags, err = filterTags(tags, g.opts.Constraint)
	if err != nil {
		return nil, err
	}

	if len(tags) == 0 {
		commits, err := g.git.Log(ctx, "", "HEAD")
		if err != nil {
			log.WithError(err).Warn("could not read commit log")
			return nil, nil
		}
		if len(commits) == 0 {
			return nil, nil
		}
		if len(commits) > MaxUnreleased {
			commits = commits[:MaxUnreleased]
		}
		return []Release{{Commits: commits}}, nil
	}

	var releases []Release
	for i, tag := range tags {
		if i >= MaxReleases {
			break
		}
		from := ""
		if i+1 < len(tags) {
			from = tags[i+1]
		}
		commits, err := g.git.Log(ctx, from, tag)
		if err != nil {
			log.WithError(err).WithField("tag", tag).Warn("could not read commits for tag")
			continue
		}
		if len(commits) == 0 {
			continue
		}
		releases = append(releases, Release{Tag: tag, Date: commits[0].Date, Commits: commits})
	}
	return releases, nil
}

// Generate renders the changelog markdown
func (g *Generator) Generate(ctx context.Context) (string, error) {
	releases, err := g.Releases(ctx)
	if err != nil {
		return "", err
	}
	return Render(releases), nil
}

func filterTags(tags []string, constraint string) ([]string, error) {
	if constraint == "" {
		return tags, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version constraint %q", constraint)
	}

	var kept []string
	for _, tag := range tags {
		v, err := semver.NewVersion(tag)
		if err != nil {
			continue
		}
		if c.Check(v) {
			kept = append(kept, tag)
		}
	}
	return kept, nil
}

// Render formats releases as markdown
func Render(releases []Release) string {
	lines := []string{
		"# Changelog\n",
		"All notable changes to this project will be documented in this file.\n",
	}

	for _, r := range releases {
		if r.Tag == "" {
			lines = append(lines, "\n## Unreleased\n")
		} else {
			lines = append(lines, "\n## ["+r.Tag+"] - "+r.Date+"\n")
		}

		grouped := map[string][]gitutil.Commit{}
		for _, c := range r.Commits {
			cat := Categorize(c.Subject)
			grouped[cat] = append(grouped[cat], c)
		}

		for _, cat := range Categories {
			commits, ok := grouped[cat]
			if !ok {
				continue
			}
			lines = append(lines, "\n### "+cat+"\n")
			for _, c := range commits {
				lines = append(lines, "- "+c.Subject+" ("+c.Hash+")")
			}
		}
	}

	return strings.Join(lines, "\n")
}
