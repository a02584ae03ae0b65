package skills

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(meta.Meta),
)

var checklistMarkers = []string{"- [ ]", "- [x]", "- [X]"}

// skillNameFromPath names a skill after the directory holding its file. A file
// with no parent directory has no name.
func skillNameFromPath(path string) string {
	dir := filepath.Dir(path)
	if dir == "." || dir == string(filepath.Separator) {
		return ""
	}
	return filepath.Base(dir)
}

// ParseDocument parses the content of a SKILL.md file. path is used for the
// skill name (parent directory) and the category (first NN-slug component),
// so it should be relative to the catalogue root.
func ParseDocument(path string, content []byte) *Document {
	doc := &Document{
		Path:      path,
		RelPath:   filepath.ToSlash(path),
		Title:     "Untitled",
		SkillName: skillNameFromPath(path),
		Category:  CategoryFromPath(filepath.ToSlash(path)),
		WordCount: len(strings.Fields(string(content))),
		LineCount: countLines(content),
		Body:      extractBodyContent(string(content)),
	}

	for _, marker := range checklistMarkers {
		if bytes.Contains(content, []byte(marker)) {
			doc.HasChecklist = true
			break
		}
	}

	pctx := parser.NewContext()
	root := markdown.Parser().Parse(text.NewReader(content), parser.WithContext(pctx))

	fm, err := meta.TryGet(pctx)
	if err != nil {
		doc.FrontmatterError = err.Error()
	}
	if fm != nil {
		doc.Frontmatter = fm
		doc.Name, _ = fm["name"].(string)
		doc.Description, _ = fm["description"].(string)
	}

	titleSet := false
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			section := Section{
				Level: node.Level,
				Title: nodeText(node, content),
			}
			if lines := node.Lines(); lines.Len() > 0 {
				section.Line = lineAt(content, lines.At(0).Start)
			}
			doc.Sections = append(doc.Sections, section)
			if node.Level == 1 && !titleSet && section.Title != "" {
				doc.Title = section.Title
				titleSet = true
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			doc.CodeBlocks = append(doc.CodeBlocks, codeBlockOf(node, content))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return doc
}

func codeBlockOf(node *ast.FencedCodeBlock, source []byte) CodeBlock {
	block := CodeBlock{
		Language: strings.ToLower(string(node.Language(source))),
	}

	var code strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}
	block.Code = code.String()

	switch {
	case node.Info != nil:
		block.Line = lineAt(source, node.Info.Segment.Start)
	case lines.Len() > 0:
		block.Line = lineAt(source, lines.At(0).Start) - 1
	}

	return block
}

// nodeText concatenates the literal text below n
func nodeText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

func lineAt(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte("\n"))
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// extractBodyContent removes YAML frontmatter and returns the body
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
