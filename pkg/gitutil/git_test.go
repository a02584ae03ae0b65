package gitutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cerebratechai/skillctl/pkg/osutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLog(t *testing.T) {
	out := "0123456789abcdef\x1ffeat: add kafka skill\x1fAda\x1f2026-10-01\n" +
		"\n" +
		"fedcba9876543210\x1ffix: typo | in title\x1fBob\x1f2026-09-30\n" +
		"garbage|line|with|pipes\n"

	commits := parseLog(out)
	require.Len(t, commits, 2)
	assert.Equal(t, Commit{Hash: "0123456", Subject: "feat: add kafka skill", Author: "Ada", Date: "2026-10-01"}, commits[0])
	assert.Equal(t, Commit{Hash: "fedcba9", Subject: "fix: typo | in title", Author: "Bob", Date: "2026-09-30"}, commits[1])
}

func TestClientWithFakeRunner(t *testing.T) {
	ctx := context.Background()
	fake := NewFakeRunner()
	fake.Outputs["tag --sort=-creatordate"] = "v1.2.0\nv1.1.0\n"
	fake.Outputs["log v1.1.0..v1.2.0 "+LogFormat+" --date=short"] = "abcdef123\x1fdocs: readme\x1fAda\x1f2026-10-02"
	fake.Outputs["describe --tags --abbrev=0"] = "v1.2.0"
	fake.Outputs["rev-parse --is-inside-work-tree"] = "true"
	fake.Errors["pull --ff-only"] = errors.New("not possible to fast-forward")

	c := New(fake)

	tags, err := c.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.2.0", "v1.1.0"}, tags)

	commits, err := c.Log(ctx, "v1.1.0", "v1.2.0")
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "abcdef1", commits[0].Hash)

	tag, err := c.LatestTag(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", tag)

	assert.True(t, c.IsRepository(ctx))
	require.NoError(t, c.Fetch(ctx))
	require.NoError(t, c.Checkout(ctx, "main"))
	assert.Error(t, c.PullFastForward(ctx))

	assert.Contains(t, fake.Commands(), "checkout main")
	assert.Contains(t, fake.Commands(), "fetch")
}

func TestExecRunner(t *testing.T) {
	if !osutil.LookPath("git") {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	dir := t.TempDir()
	runner := &ExecRunner{Dir: dir}

	_, err := runner.Run(ctx, "init", "-q", "-b", "main")
	require.NoError(t, err)
	for _, args := range [][]string{
		{"config", "user.email", "dev@example.com"},
		{"config", "user.name", "Dev"},
		{"config", "commit.gpgsign", "false"},
	} {
		_, err := runner.Run(ctx, args...)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Skills\n"), 0o644))
	_, err = runner.Run(ctx, "add", ".")
	require.NoError(t, err)
	_, err = runner.Run(ctx, "commit", "-q", "-m", "chore: initial import")
	require.NoError(t, err)
	_, err = runner.Run(ctx, "tag", "v0.1.0")
	require.NoError(t, err)

	c := New(runner)
	assert.True(t, c.IsRepository(ctx))

	subject, err := c.LastCommitSubject(ctx)
	require.NoError(t, err)
	assert.Equal(t, "chore: initial import", subject)

	commits, err := c.Log(ctx, "", "HEAD")
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "Dev", commits[0].Author)

	tag, err := c.LatestTag(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v0.1.0", tag)

	err = c.Checkout(ctx, "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git checkout exited with status")

	assert.False(t, New(&ExecRunner{Dir: t.TempDir()}).IsRepository(ctx))
}
