package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/presenter"
)

const completeSkill = `---
name: docker-patterns
description: Container build and runtime patterns
---
# Docker Patterns

## Overview
Multi-stage builds.

## Best Practices
Pin base images.

` + "```yaml\nservices:\n  web:\n    image: nginx\n```" + `

- [ ] Image is pinned
`

const incompleteSkill = `---
name: jwt
---
# JWT

## Overview
Tokens.
`

func writeSkill(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newSkillsRepo(t *testing.T, withInvalid bool) string {
	t.Helper()
	root := t.TempDir()
	writeSkill(t, root, "15-devops-infrastructure/docker-patterns/SKILL.md", completeSkill)
	if withInvalid {
		writeSkill(t, root, "10-authentication-authorization/jwt/SKILL.md", incompleteSkill)
	}
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetViper(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	finishCommand(context.Background())
	return out.String(), err
}

// capturePresenter routes presenter output of the test into the returned buffer
func capturePresenter(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := presenter.SetDefault(presenter.NewWithOptions(&buf, &buf, presenter.ColorNever))
	t.Cleanup(func() { presenter.SetDefault(prev) })
	return &buf
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"scan", "validate", "examples", "report", "stats", "readme", "changelog", "notify",
		"gap", "sync", "select", "generate", "mcp", "schedule", "version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestScanWritesManifest(t *testing.T) {
	root := newSkillsRepo(t, true)
	output := filepath.Join(t.TempDir(), "skills.json")

	_, err := execute(t, "--root", root, "scan", "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var decoded struct {
		Total  int `json:"total"`
		Skills []struct {
			SkillName string `json:"skill_name"`
		} `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.Total)
	assert.Len(t, decoded.Skills, 2)
}

func TestValidate(t *testing.T) {
	t.Run("passes on complete skills", func(t *testing.T) {
		_, err := execute(t, "--root", newSkillsRepo(t, false), "validate")
		assert.NoError(t, err)
	})

	t.Run("fails on missing sections", func(t *testing.T) {
		out := capturePresenter(t)
		_, err := execute(t, "--root", newSkillsRepo(t, true), "validate", "sections")
		assert.ErrorIs(t, err, errSilent)
		assert.Contains(t, out.String(), "1 of 2 skill files failed sections validation")
		assert.Contains(t, out.String(), "  • 10-authentication-authorization/jwt/SKILL.md: Missing required section 'Best Practices'\n")
	})

	t.Run("no skills is not an error", func(t *testing.T) {
		_, err := execute(t, "--root", t.TempDir(), "validate")
		assert.NoError(t, err)
	})

	t.Run("rejects unknown modes", func(t *testing.T) {
		_, err := execute(t, "--root", t.TempDir(), "validate", "everything")
		assert.Error(t, err)
	})
}

func TestStatsAndReport(t *testing.T) {
	root := newSkillsRepo(t, true)
	out := t.TempDir()

	_, err := execute(t, "--root", root, "stats", "--output", filepath.Join(out, "STATS.md"))
	require.NoError(t, err)
	stats, err := os.ReadFile(filepath.Join(out, "STATS.md"))
	require.NoError(t, err)
	assert.Contains(t, string(stats), "**Total Skills**: 2")

	_, err = execute(t, "--root", root, "report", "--output", filepath.Join(out, "report.html"))
	require.NoError(t, err)
	html, err := os.ReadFile(filepath.Join(out, "report.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "docker-patterns")
}

func TestReadmeDryRunWritesNothing(t *testing.T) {
	root := newSkillsRepo(t, false)
	readmePath := filepath.Join(root, "README.md")
	require.NoError(t, os.WriteFile(readmePath, []byte("# Skills\n"), 0o644))

	out, err := execute(t, "--root", root, "readme", "--manifest", "", "--readme", readmePath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "+<!-- SKILLS-START -->")

	data, err := os.ReadFile(readmePath)
	require.NoError(t, err)
	assert.Equal(t, "# Skills\n", string(data))

	_, err = execute(t, "--root", root, "readme", "--manifest", "", "--readme", readmePath, "--dry-run=false")
	require.NoError(t, err)
	data, err = os.ReadFile(readmePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "docker-patterns")
}

func TestGapWritesReport(t *testing.T) {
	root := newSkillsRepo(t, false)
	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, "package.json"),
		[]byte(`{"dependencies": {"left-pad": "1.3.0"}}`), 0o644))

	_, err := execute(t, "--root", root, "gap", "--target", target)
	require.NoError(t, err)

	report, err := os.ReadFile(filepath.Join(target, "GAP_REPORT.md"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "left-pad")
}

func TestSelectRecommendSavesSkillList(t *testing.T) {
	out := t.TempDir()

	stdout, err := execute(t, "--root", t.TempDir(), "select", "recommend", "1", "--save", "--output", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Project:")

	matches, err := filepath.Glob(filepath.Join(out, "skills_*.txt"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMCPConfigSnippet(t *testing.T) {
	root := t.TempDir()
	out, err := execute(t, "--root", root, "mcp", "config")
	require.NoError(t, err)

	var decoded struct {
		Servers map[string]struct {
			Args []string `json:"args"`
		} `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Contains(t, decoded.Servers, "skills")
	assert.Equal(t, []string{"--root", root, "mcp", "serve"}, decoded.Servers["skills"].Args)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
}

func TestSyncShowsOnlyTheStepFailure(t *testing.T) {
	root := newSkillsRepo(t, false)
	t.Setenv("GIT_DIR", filepath.Join(root, "no-such-git-dir"))
	out := capturePresenter(t)

	_, err := execute(t, "--root", root, "sync", "--skip-gap")
	assert.ErrorIs(t, err, errSilent)

	assert.Contains(t, out.String(), "[ERROR] Failed to fetch from remote\n")
	assert.NotContains(t, out.String(), "no-such-git-dir")
	assert.NotContains(t, out.String(), "fatal")
	assert.NotContains(t, out.String(), "exit status")
}

func TestGenerateStatusOnFreshState(t *testing.T) {
	root := t.TempDir()
	t.Setenv("SKILLCTL_STATE_DB", "")
	out := capturePresenter(t)

	_, err := execute(t, "--root", root, "generate", "status", "--limit", "3")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Generated: 0 | Failed: 0")
	assert.FileExists(t, filepath.Join(root, "tools", "generation_state.db"))
}

func TestFailedCommandStillReleasesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "skillctl.log")
	t.Cleanup(func() { rootCmd.PersistentFlags().Set("log-file", "") })

	_, err := execute(t, "--root", newSkillsRepo(t, true), "--log-file", logPath, "validate")
	require.Error(t, err)

	assert.Nil(t, logFile)
	assert.Nil(t, tracingShutdown)
	for level, hooks := range logger.L.Logger.Hooks {
		assert.Empty(t, hooks, "hook left attached for level %s", level)
	}
}
