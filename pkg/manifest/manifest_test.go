package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocs() []*skills.Document {
	full := "# Docker Patterns\n\n## Overview\n\n## Best Practices\n\n```bash\ndocker build .\n```\n"
	return []*skills.Document{
		skills.ParseDocument("misc/zeta/SKILL.md", []byte("# Zeta\n")),
		skills.ParseDocument("01-foundations/python-standards/SKILL.md", []byte("# Python\n\n# Overview\n")),
		skills.ParseDocument("15-devops-infrastructure/docker-patterns/SKILL.md", []byte(full)),
		{RelPath: "15-devops-infrastructure/broken/SKILL.md", SkillName: "broken", Category: skills.CategoryFromPath("15-devops-infrastructure"), ReadError: "permission denied"},
	}
}

func TestBuild(t *testing.T) {
	m := Build(sampleDocs())

	assert.Equal(t, 4, m.Total)
	require.Len(t, m.Skills, 4)

	docker := m.Skills[2]
	assert.Equal(t, "docker-patterns", docker.SkillName)
	assert.True(t, docker.HasOverview)
	assert.True(t, docker.HasBestPractices)
	assert.True(t, docker.HasCodeExamples)
	assert.Equal(t, 13, docker.WordCount)

	assert.Equal(t, []CategoryCount{
		{Number: 0, Slug: "uncategorized", Name: "Uncategorized", SkillCount: 1},
		{Number: 1, Slug: "foundations", Name: "Foundations", SkillCount: 1},
		{Number: 15, Slug: "devops-infrastructure", Name: "Devops Infrastructure", SkillCount: 2},
	}, m.Categories)

	assert.Equal(t, Statistics{
		TotalSkills:       4,
		TotalCategories:   3,
		WithOverview:      2,
		WithBestPractices: 1,
		WithCodeExamples:  1,
	}, m.Statistics)
}

func TestManifestJSON(t *testing.T) {
	data, err := Build(sampleDocs()).JSON()
	require.NoError(t, err)

	var raw struct {
		Skills []map[string]any `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, map[string]any{
		"error": "permission denied",
		"path":  "15-devops-infrastructure/broken/SKILL.md",
	}, raw.Skills[3])

	assert.Equal(t, map[string]any{"number": float64(1), "slug": "foundations", "name": "Foundations"}, raw.Skills[1]["category"])
	assert.Equal(t, false, raw.Skills[0]["has_overview"])
	assert.Equal(t, "Zeta", raw.Skills[0]["title"])
}

func TestBuildEmpty(t *testing.T) {
	data, err := Build(nil).JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"skills": [],
		"total": 0,
		"categories": [],
		"statistics": {"total_skills":0,"total_categories":0,"with_overview":0,"with_best_practices":0,"with_code_examples":0}
	}`, string(data))
}

func TestLoad(t *testing.T) {
	data, err := Build(sampleDocs()).JSON()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "skills.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Total)
	assert.Equal(t, "docker-patterns", m.Skills[2].SkillName)
	assert.Equal(t, 15, m.Skills[2].Category.Number)
	assert.Equal(t, "permission denied", m.Skills[3].Error)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "Skill manifest", schema["title"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "skills")
	assert.Contains(t, props, "statistics")
}
