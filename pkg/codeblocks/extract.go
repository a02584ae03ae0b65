// Package codeblocks extracts fenced code examples from skill documents into
// runnable project scaffolds and syntax-checks them with per-language validators.
package codeblocks

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/pkg/errors"
)

// LanguageAliases lists the fence info strings accepted for each extractable language
var LanguageAliases = map[string][]string{
	"typescript": {"typescript", "ts", "tsx"},
	"python":     {"python", "py"},
	"javascript": {"javascript", "js", "jsx"},
}

// ExtractLanguages are the languages with a project scaffold
var ExtractLanguages = []string{"typescript", "python", "javascript"}

// Aliases returns the fence languages that count as language
func Aliases(language string) []string {
	if aliases, ok := LanguageAliases[language]; ok {
		return aliases
	}
	return []string{language}
}

// Example is a code block pulled out of a skill document
type Example struct {
	Source   string `json:"source"`
	Language string `json:"-"`
	Code     string `json:"-"`
	Line     int    `json:"line"`
}

// Extract returns every block of language across docs in document order
func Extract(docs []*skills.Document, language string) []Example {
	aliases := map[string]bool{}
	for _, a := range Aliases(strings.ToLower(language)) {
		aliases[a] = true
	}

	var examples []Example
	for _, doc := range docs {
		for _, block := range doc.CodeBlocks {
			if !aliases[block.Language] {
				continue
			}
			examples = append(examples, Example{
				Source:   doc.RelPath,
				Language: block.Language,
				Code:     block.Code,
				Line:     block.Line,
			})
		}
	}
	return examples
}

// ExtractManifest is written alongside the scaffold as manifest.json
type ExtractManifest struct {
	Language      string    `json:"language"`
	TotalExamples int       `json:"total_examples"`
	SourceFiles   int       `json:"source_files"`
	Examples      []Example `json:"examples"`
}

type scaffoldFile struct {
	name    string
	content string
}

// Scaffold writes examples into <outputDir>/<language> together with the
// project files needed to type-check or test them, and returns that directory.
func Scaffold(outputDir, language string, examples []Example, sourceFiles int) (string, error) {
	dir := filepath.Join(outputDir, language)

	var files []scaffoldFile
	switch language {
	case "typescript":
		files = append(files,
			scaffoldFile{"package.json", mustJSON(nodePackage("tsc --noEmit", "tsc", map[string]string{
				"typescript":  "^5.0.0",
				"@types/node": "^20.0.0",
			}))},
			scaffoldFile{"tsconfig.json", mustJSON(tsconfig)},
		)
		files = append(files, exampleFiles(examples, ".ts")...)
	case "python":
		files = append(files, scaffoldFile{"requirements.txt", "pytest>=7.0.0\nmypy>=1.0.0\n"})
		files = append(files, exampleFiles(examples, ".py")...)
		files = append(files, scaffoldFile{"test_examples.py", pythonSyntaxTest})
	case "javascript":
		files = append(files, scaffoldFile{"package.json", mustJSON(nodePackage(
			"for f in example_*.js; do node --check \"$f\" || exit 1; done", "", nil))})
		files = append(files, exampleFiles(examples, ".js")...)
	default:
		return "", errors.Errorf("no scaffold for language %q", language)
	}

	if examples == nil {
		examples = []Example{}
	}
	files = append(files, scaffoldFile{"manifest.json", mustJSON(ExtractManifest{
		Language:      language,
		TotalExamples: len(examples),
		SourceFiles:   sourceFiles,
		Examples:      examples,
	})})

	for _, f := range files {
		if err := fsutil.WriteFile(filepath.Join(dir, f.name), []byte(f.content), 0o644); err != nil {
			return "", err
		}
	}
	if err := fsutil.WriteFile(filepath.Join(dir, "test-results", ".gitkeep"), nil, 0o644); err != nil {
		return "", err
	}

	return dir, nil
}

func exampleFiles(examples []Example, ext string) []scaffoldFile {
	files := make([]scaffoldFile, 0, len(examples))
	for i, e := range examples {
		files = append(files, scaffoldFile{fmt.Sprintf("example_%d%s", i+1, ext), e.Code})
	}
	return files
}

func nodePackage(test, build string, devDeps map[string]string) map[string]any {
	scripts := map[string]string{"test": test}
	if build != "" {
		scripts["build"] = build
	}
	pkg := map[string]any{
		"name":    "skill-code-examples",
		"version": "1.0.0",
		"scripts": scripts,
	}
	if len(devDeps) > 0 {
		pkg["devDependencies"] = devDeps
	}
	return pkg
}

var tsconfig = map[string]any{
	"compilerOptions": map[string]any{
		"target":          "ES2022",
		"module":          "commonjs",
		"strict":          false,
		"esModuleInterop": true,
		"skipLibCheck":    true,
		"noEmit":          true,
		"allowJs":         true,
	},
	"include": []string{"**/*.ts", "**/*.tsx"},
}

const pythonSyntaxTest = `import subprocess
import sys
from pathlib import Path

def test_syntax():
    """Test that all Python examples have valid syntax."""
    examples_dir = Path(__file__).parent
    errors = []

    for py_file in examples_dir.glob('example_*.py'):
        result = subprocess.run(
            [sys.executable, '-m', 'py_compile', str(py_file)],
            capture_output=True,
            text=True
        )
        if result.returncode != 0:
            errors.append(f"{py_file.name}: {result.stderr}")

    assert not errors, f"Syntax errors found:\n" + "\n".join(errors)
`

func mustJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(data)
}
