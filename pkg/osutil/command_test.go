//go:build unix

package osutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRunsInOwnProcessGroup(t *testing.T) {
	cmd := Command(context.Background(), t.TempDir(), "echo", "test")

	require.NotNil(t, cmd.SysProcAttr)
	assert.True(t, cmd.SysProcAttr.Setpgid)
	assert.NotNil(t, cmd.Cancel)
	assert.Equal(t, waitDelay, cmd.WaitDelay)
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("captures output", func(t *testing.T) {
		res, err := Run(ctx, t.TempDir(), 0, nil, "sh", "-c", "echo out; echo err >&2")
		require.NoError(t, err)
		assert.Equal(t, "out\n", res.Stdout)
		assert.Equal(t, "err\n", res.Stderr)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "err\nout", res.Output())
	})

	t.Run("feeds stdin", func(t *testing.T) {
		res, err := Run(ctx, "", 0, []byte("piped"), "cat")
		require.NoError(t, err)
		assert.Equal(t, "piped", res.Stdout)
	})

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		res, err := Run(ctx, "", 0, nil, "sh", "-c", "exit 3")
		require.NoError(t, err)
		assert.Equal(t, 3, res.ExitCode)
	})

	t.Run("timeout kills the process group", func(t *testing.T) {
		start := time.Now()
		_, err := Run(ctx, "", 200*time.Millisecond, nil, "sh", "-c", "sleep 5 & sleep 5")
		assert.ErrorIs(t, err, ErrTimeout)
		assert.Less(t, time.Since(start), 3*time.Second)
	})

	t.Run("missing executable", func(t *testing.T) {
		_, err := Run(ctx, "", 0, nil, "definitely-not-a-real-binary-xyz")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrTimeout)
	})
}

func TestLookPath(t *testing.T) {
	assert.True(t, LookPath("sh"))
	assert.False(t, LookPath("definitely-not-a-real-binary-xyz"))
}
