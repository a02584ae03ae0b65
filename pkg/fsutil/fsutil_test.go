package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "validation-report.html")

	require.NoError(t, WriteFile(path, []byte("<html></html>"), 0o644))
	assert.True(t, Exists(path))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))

	require.NoError(t, WriteFile(path, []byte("short"), 0o644))
	data, err = ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.False(t, Exists(filepath.Join(t.TempDir(), "missing")))
}

func TestTransform(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")

	require.NoError(t, Transform(path, func(old []byte) ([]byte, error) {
		assert.Empty(t, old)
		return []byte("# Claude Skills\n"), nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, Transform(path, func(old []byte) ([]byte, error) {
				return append(old, []byte("line\n")...), nil
			}))
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, strings.Count(string(data), "line\n"))

	err = Transform(path, func([]byte) ([]byte, error) {
		return nil, errors.New("refused")
	})
	assert.ErrorContains(t, err, "refused")

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Claude Skills\n"))
}
