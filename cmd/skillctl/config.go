package main

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/cerebratechai/skillctl/pkg/backoff"
	"github.com/cerebratechai/skillctl/pkg/codeblocks"
	"github.com/cerebratechai/skillctl/pkg/gap"
	"github.com/cerebratechai/skillctl/pkg/notify"
	"github.com/cerebratechai/skillctl/pkg/schedule"
	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/cerebratechai/skillctl/pkg/validate"
)

// SkillsConfig is the skills section: extra excludes and installed skill directories
type SkillsConfig struct {
	Exclude   []string `mapstructure:"exclude"`
	ExtraDirs []string `mapstructure:"extra_dirs"`
	Allowed   []string `mapstructure:"allowed"`
}

// rootDir returns the skills repository root as an absolute path when possible
func rootDir() string {
	root := viper.GetString("root")
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}

// rootPath joins name onto the skills root
func rootPath(name string) string {
	return filepath.Join(rootDir(), name)
}

func unmarshalSection(key string, out any) error {
	if !viper.IsSet(key) {
		return nil
	}
	return errors.Wrapf(viper.UnmarshalKey(key, out), "invalid %s configuration", key)
}

func skillsConfig() (SkillsConfig, error) {
	var cfg SkillsConfig
	err := unmarshalSection("skills", &cfg)
	return cfg, err
}

// scanDocuments scans the repository root for SKILL.md files
func scanDocuments(ctx context.Context) ([]*skills.Document, error) {
	cfg, err := skillsConfig()
	if err != nil {
		return nil, err
	}
	return skills.NewScanner(skills.WithExcludes(cfg.Exclude...)).Scan(ctx, rootDir())
}

// loadCatalogue scans the repository and merges installed skill directories
func loadCatalogue(ctx context.Context) (*skills.Catalogue, error) {
	cfg, err := skillsConfig()
	if err != nil {
		return nil, err
	}
	return skills.Load(ctx, rootDir(), skills.LoadOptions{
		Excludes:  cfg.Exclude,
		ExtraDirs: cfg.ExtraDirs,
		Allowed:   cfg.Allowed,
	})
}

func validateConfig() (validate.Config, error) {
	cfg := validate.DefaultConfig()
	err := unmarshalSection("validate", &cfg)
	return cfg, err
}

func codeblocksConfig() (codeblocks.Config, error) {
	cfg := codeblocks.DefaultConfig()
	err := unmarshalSection("codeblocks", &cfg)
	return cfg, err
}

func gapConfig() (gap.Config, error) {
	cfg := gap.DefaultConfig()
	err := unmarshalSection("gap", &cfg)
	return cfg, err
}

func notifyConfig() (notify.Config, error) {
	cfg := notify.Config{Retry: backoff.DefaultConfig()}
	err := unmarshalSection("notify", &cfg)
	return cfg, err
}

func scheduleConfig() (schedule.Config, error) {
	var cfg schedule.Config
	err := unmarshalSection("schedule", &cfg)
	return cfg, err
}
