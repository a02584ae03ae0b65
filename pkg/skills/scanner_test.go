package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newSkillTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeSkill(t, root, "15-devops-infrastructure/docker-patterns/SKILL.md", dockerSkill)
	writeSkill(t, root, "01-foundations/python-standards/SKILL.md", "# Python Standards\n")
	writeSkill(t, root, "02-languages/alpha/SKILL.md", "# Alpha\n")
	writeSkill(t, root, "misc/zeta/SKILL.md", "# Zeta\n")
	writeSkill(t, root, "node_modules/pkg/SKILL.md", "# Vendored\n")
	writeSkill(t, root, "01-foundations/python-standards/README.md", "# Not a skill\n")
	return root
}

func TestScannerFind(t *testing.T) {
	root := newSkillTree(t)

	paths, err := NewScanner().Find(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"01-foundations/python-standards/SKILL.md",
		"02-languages/alpha/SKILL.md",
		"15-devops-infrastructure/docker-patterns/SKILL.md",
		"misc/zeta/SKILL.md",
	}, paths)

	paths, err = NewScanner(WithExcludes("misc")).Find(root)
	require.NoError(t, err)
	assert.Len(t, paths, 3)

	paths, err = NewScanner(WithExcludes("0*-*")).Find(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"15-devops-infrastructure/docker-patterns/SKILL.md",
		"misc/zeta/SKILL.md",
	}, paths)
}

func TestScannerFindSkipsRootSkillFile(t *testing.T) {
	root := newSkillTree(t)
	writeSkill(t, root, "SKILL.md", "# Repository Skill\n")

	paths, err := NewScanner().Find(root)
	require.NoError(t, err)
	assert.NotContains(t, paths, "SKILL.md")
	assert.Len(t, paths, 4)

	docs, err := NewScanner().Scan(context.Background(), root)
	require.NoError(t, err)
	for _, d := range docs {
		assert.NotEqual(t, ".", d.SkillName)
	}
}

func TestScannerFindMissingRoot(t *testing.T) {
	_, err := NewScanner().Find(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestScannerScan(t *testing.T) {
	root := newSkillTree(t)

	docs, err := NewScanner(WithConcurrency(2)).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	var order []string
	for _, d := range docs {
		order = append(order, d.SkillName)
	}
	assert.Equal(t, []string{"zeta", "python-standards", "alpha", "docker-patterns"}, order)

	docker := docs[3]
	assert.Equal(t, filepath.Join(root, "15-devops-infrastructure", "docker-patterns", "SKILL.md"), docker.Path)
	assert.Equal(t, "15-devops-infrastructure/docker-patterns/SKILL.md", docker.RelPath)
	assert.Equal(t, "Docker Patterns", docker.Title)
}

func TestScannerScanUnreadable(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "03-broken", "dangling")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.Symlink(filepath.Join(root, "nowhere.md"), filepath.Join(dir, "SKILL.md")))

	docs, err := NewScanner().Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotEmpty(t, docs[0].ReadError)
	assert.Equal(t, "dangling", docs[0].SkillName)
	assert.Equal(t, 3, docs[0].Category.Number)
}

func TestScannerScanCancelled(t *testing.T) {
	root := newSkillTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner().Scan(ctx, root)
	assert.Error(t, err)
}
