package gap

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/pkg/errors"
)

// ManifestFiles are the dependency manifests read from the target directory
var ManifestFiles = []string{"package.json", "requirements.txt", "pyproject.toml", "Cargo.toml"}

// requirementName matches the distribution name at the start of a PEP 508 requirement
var requirementName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)

type manifestParser func(data []byte) ([]string, error)

var parsers = map[string]manifestParser{
	"package.json":     parsePackageJSON,
	"requirements.txt": parseRequirements,
	"pyproject.toml":   parsePyproject,
	"Cargo.toml":       parseCargo,
}

// ScanDependencies collects the dependency names declared in the manifests
// of dir. Manifests that cannot be read or parsed are logged and skipped.
func ScanDependencies(ctx context.Context, dir string) []string {
	set := map[string]struct{}{}
	for _, name := range ManifestFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err == nil {
			var deps []string
			deps, err = parsers[name](data)
			for _, d := range deps {
				set[d] = struct{}{}
			}
		}
		if err != nil {
			logger.G(ctx).WithError(err).WithField("manifest", path).Error("failed to read dependency manifest")
		}
	}

	deps := make([]string, 0, len(set))
	for d := range set {
		deps = append(deps, d)
	}
	sort.Strings(deps)
	return deps
}

func parsePackageJSON(data []byte) ([]string, error) {
	var pkg struct {
		Dependencies    map[string]any `json:"dependencies"`
		DevDependencies map[string]any `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.Wrap(err, "invalid package.json")
	}
	var deps []string
	for name := range pkg.Dependencies {
		deps = append(deps, name)
	}
	for name := range pkg.DevDependencies {
		deps = append(deps, name)
	}
	return deps, nil
}

func parseRequirements(data []byte) ([]string, error) {
	var deps []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if name := requirement(scanner.Text()); name != "" {
			deps = append(deps, name)
		}
	}
	return deps, errors.Wrap(scanner.Err(), "invalid requirements.txt")
}

// requirement returns the lower-cased package name of a requirements line,
// dropping comments, extras, markers and version specifiers. Option lines
// such as "-r base.txt" yield an empty name.
func requirement(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "-") {
		return ""
	}
	return strings.ToLower(requirementName.FindString(line))
}

func parsePyproject(data []byte) ([]string, error) {
	var doc struct {
		Project struct {
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry map[string]any `toml:"poetry"`
		} `toml:"tool"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, errors.Wrap(err, "invalid pyproject.toml")
	}

	var deps []string
	for _, r := range doc.Project.Dependencies {
		if name := requirement(r); name != "" {
			deps = append(deps, name)
		}
	}
	for _, group := range doc.Project.OptionalDependencies {
		for _, r := range group {
			if name := requirement(r); name != "" {
				deps = append(deps, name)
			}
		}
	}

	for key, value := range doc.Tool.Poetry {
		if !strings.HasSuffix(key, "dependencies") {
			if key == "group" {
				deps = append(deps, poetryGroups(value)...)
			}
			continue
		}
		deps = append(deps, poetryTable(value)...)
	}
	return deps, nil
}

// poetryGroups reads [tool.poetry.group.<name>.dependencies] tables
func poetryGroups(value any) []string {
	groups, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	var deps []string
	for _, g := range groups {
		group, ok := g.(map[string]any)
		if !ok {
			continue
		}
		deps = append(deps, poetryTable(group["dependencies"])...)
	}
	return deps
}

func poetryTable(value any) []string {
	table, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	var deps []string
	for name := range table {
		if strings.EqualFold(name, "python") {
			continue
		}
		deps = append(deps, strings.ToLower(name))
	}
	return deps
}

func parseCargo(data []byte) ([]string, error) {
	var doc struct {
		Dependencies    map[string]any `toml:"dependencies"`
		DevDependencies map[string]any `toml:"dev-dependencies"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, errors.Wrap(err, "invalid Cargo.toml")
	}
	var deps []string
	for name := range doc.Dependencies {
		deps = append(deps, name)
	}
	for name := range doc.DevDependencies {
		deps = append(deps, name)
	}
	return deps, nil
}
