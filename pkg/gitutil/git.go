// Package gitutil wraps the git CLI for the repository maintenance commands.
package gitutil

import (
	"context"
	"strings"

	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/osutil"
	"github.com/pkg/errors"
)

// Runner runs a git subcommand and returns its trimmed standard output
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// ExecRunner runs the git binary inside Dir
type ExecRunner struct {
	Dir    string
	Binary string
}

// Run executes git with args. A non-zero exit becomes an error carrying git's output.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	binary := r.Binary
	if binary == "" {
		binary = "git"
	}

	logger.G(ctx).WithField("args", args).Debug("running git")
	res, err := osutil.Run(ctx, r.Dir, 0, nil, binary, args...)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		sub := ""
		if len(args) > 0 {
			sub = args[0]
		}
		return "", errors.Errorf("git %s exited with status %d: %s", sub, res.ExitCode, res.Output())
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Commit is a single log entry
type Commit struct {
	Hash    string // abbreviated to 7 characters
	Subject string
	Author  string
	Date    string // YYYY-MM-DD
}

// Client exposes the git operations skillctl needs
type Client struct {
	runner Runner
}

// New creates a client over runner
func New(runner Runner) *Client {
	return &Client{runner: runner}
}

// NewForDir creates a client that runs the git binary in dir
func NewForDir(dir string) *Client {
	return New(&ExecRunner{Dir: dir})
}

// IsRepository reports whether the working directory is inside a git work tree
func (c *Client) IsRepository(ctx context.Context) bool {
	out, err := c.runner.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Fetch downloads objects and refs from the default remote
func (c *Client) Fetch(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "fetch")
	return err
}

// Checkout switches to branch
func (c *Client) Checkout(ctx context.Context, branch string) error {
	_, err := c.runner.Run(ctx, "checkout", branch)
	return err
}

// PullFastForward integrates upstream changes only when no merge is needed
func (c *Client) PullFastForward(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "pull", "--ff-only")
	return err
}

// Tags lists tags, newest first by creation date
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	out, err := c.runner.Run(ctx, "tag", "--sort=-creatordate")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tags")
	}
	return nonEmptyLines(out), nil
}

// LogFormat is the pretty format Log asks git for. Fields are separated by
// the ASCII unit separator so subjects may contain any printable text.
const LogFormat = "--pretty=format:%H%x1f%s%x1f%an%x1f%ad"

const logFieldSeparator = "\x1f"

// Log lists commits reachable from to but not from from, newest first.
// An empty from lists all history of to.
func (c *Client) Log(ctx context.Context, from, to string) ([]Commit, error) {
	rangeSpec := to
	if from != "" {
		rangeSpec = from + ".." + to
	}

	out, err := c.runner.Run(ctx, "log", rangeSpec, LogFormat, "--date=short")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read log %s", rangeSpec)
	}
	return parseLog(out), nil
}

// LatestTag returns the most recent tag reachable from HEAD
func (c *Client) LatestTag(ctx context.Context) (string, error) {
	return c.runner.Run(ctx, "describe", "--tags", "--abbrev=0")
}

// LastCommitSubject returns the subject line of HEAD
func (c *Client) LastCommitSubject(ctx context.Context) (string, error) {
	return c.runner.Run(ctx, "log", "-1", "--pretty=format:%s")
}

func parseLog(out string) []Commit {
	var commits []Commit
	for _, line := range nonEmptyLines(out) {
		parts := strings.SplitN(line, logFieldSeparator, 4)
		if len(parts) < 4 {
			continue
		}
		hash := parts[0]
		if len(hash) > 7 {
			hash = hash[:7]
		}
		commits = append(commits, Commit{
			Hash:    hash,
			Subject: parts[1],
			Author:  parts[2],
			Date:    parts[3],
		})
	}
	return commits
}

func nonEmptyLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
