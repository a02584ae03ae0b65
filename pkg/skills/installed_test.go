package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docNames(docs []*Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Name)
	}
	return out
}

func TestInstalled(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeSkill(t, first, "terraform/SKILL.md", "---\nname: terraform\ndescription: Modules and state\n---\n# Terraform\n\n## Instructions\nPin providers.\n")
	writeSkill(t, first, "incomplete/SKILL.md", "---\nname: incomplete\n---\n# Incomplete\n")
	writeSkill(t, first, "no-frontmatter/SKILL.md", "# Plain\n")
	writeSkill(t, second, "terraform/SKILL.md", "---\nname: terraform\ndescription: Shadowed\n---\n# Other\n")
	writeSkill(t, second, "ansible/SKILL.md", "---\nname: ansible\ndescription: Playbooks\n---\n# Ansible\n")
	require.NoError(t, os.WriteFile(filepath.Join(second, "notes.txt"), []byte("not a skill"), 0o644))

	docs := Installed(context.Background(), []string{first, filepath.Join(first, "missing"), second}, nil)
	assert.Equal(t, []string{"ansible", "terraform"}, docNames(docs))

	terraform := docs[1]
	assert.Equal(t, "Modules and state", terraform.Description)
	assert.Equal(t, "terraform", terraform.SkillName)
	assert.Contains(t, terraform.Body, "Pin providers.")

	docs = Installed(context.Background(), []string{first, second}, []string{"ansible", "kafka"})
	assert.Equal(t, []string{"ansible"}, docNames(docs))

	assert.Empty(t, Installed(context.Background(), nil, nil))
}

func TestInstalledFollowsSymlinks(t *testing.T) {
	tmp := t.TempDir()
	installDir := filepath.Join(tmp, "skills")
	require.NoError(t, os.MkdirAll(installDir, 0o755))
	writeSkill(t, tmp, "checkout/linked/SKILL.md", "---\nname: linked\ndescription: Reached through a symlink\n---\n# Linked\n")
	require.NoError(t, os.Symlink(filepath.Join(tmp, "checkout", "linked"), filepath.Join(installDir, "linked")))

	docs := Installed(context.Background(), []string{installDir}, nil)
	require.Len(t, docs, 1)
	assert.Equal(t, "Reached through a symlink", docs[0].Description)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/skills")

	assert.Equal(t, "/home/skills/.claude/skills", expandHome("~/.claude/skills"))
	assert.Equal(t, "/home/skills", expandHome("~"))
	assert.Equal(t, "./.claude/skills", expandHome("./.claude/skills"))
	assert.Equal(t, "~other/skills", expandHome("~other/skills"))
}

func TestLoadMergesInstalledSkills(t *testing.T) {
	root := newSkillTree(t)
	installed := t.TempDir()
	writeSkill(t, installed, "kafka-streams/SKILL.md", "---\nname: kafka-streams\ndescription: Streams\n---\n# Kafka\n")
	writeSkill(t, installed, "docker-patterns/SKILL.md", "---\nname: docker-patterns\ndescription: Shadowed\n---\n# Shadowed\n")

	c, err := Load(context.Background(), root, LoadOptions{ExtraDirs: []string{installed}})
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	d, err := c.Lookup("docker-patterns")
	require.NoError(t, err)
	assert.Equal(t, "Docker Patterns", d.Title)

	d, err = c.Lookup("kafka-streams")
	require.NoError(t, err)
	assert.Equal(t, "Kafka", d.Title)

	c, err = Load(context.Background(), root, LoadOptions{ExtraDirs: []string{installed}, Allowed: []string{"none"}, Excludes: []string{"misc"}})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
}
