// Package builder assembles compiler specs from course records. Each
// builder owns the flow concerns its target format leaves to the
// caller: the handout builder paginates, the guide builder sequences
// sections, the slide assembler orders the deck.
package builder

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var htmlTagRE = regexp.MustCompile(`<[^>]+>`)

// StripMarkdown flattens markdown to plain paragraphs by walking the
// parsed AST and collecting text leaves. Headings, emphasis, links and
// list markers all reduce to their visible text.
func StripMarkdown(source string) []string {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader([]byte(source)))

	var paragraphs []string
	var current strings.Builder
	flush := func() {
		p := strings.TrimSpace(current.String())
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				current.Write(node.Segment.Value([]byte(source)))
				if node.SoftLineBreak() || node.HardLineBreak() {
					current.WriteByte(' ')
				}
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if !entering {
				flush()
			}
		}
		return ast.WalkContinue, nil
	})
	flush()
	return paragraphs
}

// StripHTML reduces html lesson bodies to plain paragraphs by removing
// tags and splitting on blank lines. Coarse on purpose: lesson html is
// editor output, not arbitrary markup.
func StripHTML(source string) []string {
	plain := htmlTagRE.ReplaceAllString(source, "\n")
	var paragraphs []string
	for _, chunk := range strings.Split(plain, "\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			paragraphs = append(paragraphs, chunk)
		}
	}
	return paragraphs
}

// extractKeyConcepts selects up to five stripped paragraphs between 20
// and 500 characters, in document order.
func extractKeyConcepts(paragraphs []string) []string {
	var concepts []string
	for _, p := range paragraphs {
		if len(p) < 20 || len(p) > 500 {
			continue
		}
		concepts = append(concepts, p)
		if len(concepts) == 5 {
			break
		}
	}
	return concepts
}

// stripLessonContent dispatches on the declared content type, treating
// anything unrecognized as markdown.
func stripLessonContent(contentType, body string) []string {
	if strings.EqualFold(contentType, "html") {
		return StripHTML(body)
	}
	return StripMarkdown(body)
}
