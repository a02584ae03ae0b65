package validate

import (
	"context"
	"testing"

	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completeSkill = `---
name: jwt
description: Token authentication
---

# JWT

## Overview

Stateless tokens.

## Best Practices

` + "```go\ntoken := jwt.New()\n```" + `

## Troubleshooting

- [x] Rotate signing keys
`

func parse(rel, content string) *skills.Document {
	return skills.ParseDocument(rel, []byte(content))
}

func messages(r Result) []string {
	var out []string
	for _, i := range r.Issues {
		out = append(out, i.Message)
	}
	return out
}

func TestModeRules(t *testing.T) {
	rules, err := ModeStructure.Rules()
	require.NoError(t, err)
	assert.Len(t, rules, 4)

	rules, err = ModeSections.Rules()
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleSections}, rules)

	_, err = Mode("lint").Rules()
	assert.Error(t, err)
	_, err = New("lint", Config{})
	assert.Error(t, err)
}

func TestValidateStructure(t *testing.T) {
	v, err := New(ModeStructure, Config{})
	require.NoError(t, err)

	t.Run("complete skill passes", func(t *testing.T) {
		res := v.Validate(parse("10-auth/jwt/SKILL.md", completeSkill))
		assert.True(t, res.OK())
		assert.NoError(t, res.Err())
		assert.Equal(t, []string{"Code Examples", "Common Patterns", "References"}, res.MissingOptional)
	})

	t.Run("bare skill reports every rule", func(t *testing.T) {
		res := v.Validate(parse("10-auth/bare/SKILL.md", "# Bare\n\nJust prose.\n"))
		assert.Equal(t, []string{
			"Missing required section 'Overview'",
			"Missing required section 'Best Practices'",
			"No code examples found",
			"No checklist found",
			"Missing front matter field 'name'",
			"Missing front matter field 'description'",
		}, messages(res))

		err := res.Err()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "10-auth/bare/SKILL.md: Missing required section 'Overview'; ")
	})

	t.Run("unreadable file", func(t *testing.T) {
		res := v.Validate(&skills.Document{RelPath: "x/SKILL.md", ReadError: "permission denied"})
		assert.Equal(t, []string{"Could not read file: permission denied"}, messages(res))
	})
}

func TestValidateSectionsMode(t *testing.T) {
	v, err := New(ModeSections, Config{RequiredSections: []string{"Overview", "Troubleshooting"}})
	require.NoError(t, err)

	res := v.Validate(parse("a/b/SKILL.md", "# T\n\n### Overview of things\n"))
	assert.Equal(t, []string{"Missing required section 'Troubleshooting'"}, messages(res))
}

func TestValidateAll(t *testing.T) {
	v, err := New(ModeStructure, DefaultConfig())
	require.NoError(t, err)

	results := v.ValidateAll(context.Background(), []*skills.Document{
		parse("10-auth/jwt/SKILL.md", completeSkill),
		parse("10-auth/bare/SKILL.md", "# Bare\n"),
	})
	require.Len(t, results, 2)

	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "10-auth/bare/SKILL.md", failed[0].Path)
}

func TestErrors(t *testing.T) {
	v, err := New(ModeSections, Config{})
	require.NoError(t, err)

	results := []Result{
		v.Validate(parse("a/ok/SKILL.md", "# Ok\n\n## Overview\n\n## Best Practices\n")),
		v.Validate(parse("a/one/SKILL.md", "# One\n\n## Overview\n")),
		v.Validate(parse("a/two/SKILL.md", "# Two\n")),
	}

	err = Errors(results)
	require.Error(t, err)
	assert.Equal(t, "a/one/SKILL.md: Missing required section 'Best Practices'\n"+
		"a/two/SKILL.md: Missing required section 'Overview'; Missing required section 'Best Practices'", err.Error())

	assert.NoError(t, Errors(results[:1]))
	assert.NoError(t, Errors(nil))
}
