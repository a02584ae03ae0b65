package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIndex(t *testing.T) {
	content := `# Skill Index

- [docker-patterns](15-devops-infrastructure/docker-patterns/SKILL.md) - containers
- [jwt_auth](10-authentication-authorization/jwt/SKILL.md)
- [Not A Skill](https://example.com)
- [stripe-integration] without a link
`
	names := ParseIndex([]byte(content))

	assert.Equal(t, []string{"docker-patterns", "jwt_auth"}, SortedNames(names))
}

func TestParseIndexUnicodeNames(t *testing.T) {
	content := "- [café-patterns](x/SKILL.md)\n- [日本語-docs](y/SKILL.md)\n- [oauth2](z/SKILL.md)\n"
	names := ParseIndex([]byte(content))

	assert.Equal(t, []string{"café-patterns", "oauth2", "日本語-docs"}, SortedNames(names))
}

func TestLoadIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), IndexFileName)
	require.NoError(t, os.WriteFile(path, []byte("[react-best-practices](x)"), 0o644))

	names, err := LoadIndex(path)
	require.NoError(t, err)
	assert.Contains(t, names, "react-best-practices")

	_, err = LoadIndex(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestNameSet(t *testing.T) {
	docs := []*Document{
		{SkillName: "jwt", Name: "jwt-auth"},
		{SkillName: "docker-patterns"},
	}

	assert.Equal(t, []string{"docker-patterns", "jwt", "jwt-auth"}, SortedNames(NameSet(docs)))
}
