package pptx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
)

// contentRule routes one placeholder tag to a string value. Rules are
// consulted in order and the first matching pattern wins; a tag that
// matches nothing resolves to the empty string so raw {{tag}} syntax
// never leaks into output.
type contentRule struct {
	pattern *regexp.Regexp
	resolve func(slide spec.SlideData) string
}

var contentRules = []contentRule{
	{regexp.MustCompile(`(?i)attribution|cited|source`), func(s spec.SlideData) string {
		_, attribution := parseQuote(s)
		return attribution
	}},
	{regexp.MustCompile(`(?i)quote|quotation`), func(s spec.SlideData) string {
		text, _ := parseQuote(s)
		return text
	}},
	{regexp.MustCompile(`(?i)^(course_|slide_|main_|section_)?title$`), func(s spec.SlideData) string {
		return s.Title
	}},
	{regexp.MustCompile(`(?i)subtitle|tagline`), func(s spec.SlideData) string {
		if len(s.Content) > 0 {
			return s.Content[0]
		}
		return ""
	}},
	{regexp.MustCompile(`(?i)left(_column|_content)?$`), func(s spec.SlideData) string {
		left, _ := splitColumns(s)
		return strings.Join(left, "\n")
	}},
	{regexp.MustCompile(`(?i)right(_column|_content)?$`), func(s spec.SlideData) string {
		_, right := splitColumns(s)
		return strings.Join(right, "\n")
	}},
	{regexp.MustCompile(`(?i)step|instruction|number|process|sequence`), func(s spec.SlideData) string {
		return numberedLines(s.Content)
	}},
	{regexp.MustCompile(`(?i)note`), func(s spec.SlideData) string {
		return s.Notes
	}},
	{regexp.MustCompile(`(?i)content|bullet|body|point|text|item`), func(s spec.SlideData) string {
		return bulletLines(s.Content)
	}},
}

// PopulatePlaceholders resolves every tag to a substitution value.
// The returned map always covers every input tag.
func PopulatePlaceholders(tags []string, slide spec.SlideData) map[string]string {
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		out[tag] = resolveTag(tag, slide)
	}
	return out
}

func resolveTag(tag string, slide spec.SlideData) string {
	for _, rule := range contentRules {
		if rule.pattern.MatchString(tag) {
			return rule.resolve(slide)
		}
	}
	return ""
}

func bulletLines(content []string) string {
	lines := make([]string, 0, len(content))
	for _, c := range content {
		lines = append(lines, "• "+c)
	}
	return strings.Join(lines, "\n")
}

func numberedLines(content []string) string {
	lines := make([]string, 0, len(content))
	for i, c := range content {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, c))
	}
	return strings.Join(lines, "\n")
}

// quoteRE captures markdown blockquote syntax: > "text" — attribution.
var quoteRE = regexp.MustCompile(`^>\s*"?([^"]*)"?\s*(?:\x{2014}|--)\s*(.*)$`)

// parseQuote separates quote text from attribution. Blockquote lines in
// RawContent win; without them the content lines stand in for the quote
// and the attribution is empty.
func parseQuote(slide spec.SlideData) (text, attribution string) {
	for _, line := range strings.Split(slide.RawContent, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, ">") {
			continue
		}
		if m := quoteRE.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
		stripped := strings.TrimSpace(strings.TrimPrefix(line, ">"))
		stripped = strings.Trim(stripped, `"`)
		if text == "" {
			text = stripped
		} else {
			text += " " + stripped
		}
	}
	if text != "" {
		return text, attribution
	}
	return strings.Join(slide.Content, " "), ""
}

// splitColumns yields two columns: the first markdown table found in
// RawContent splits by its first two columns; otherwise the content
// array is bisected.
func splitColumns(slide spec.SlideData) (left, right []string) {
	rows := parseMarkdownTable(slide.RawContent)
	if len(rows) > 0 {
		for _, row := range rows {
			if len(row) > 0 {
				left = append(left, row[0])
			}
			if len(row) > 1 {
				right = append(right, row[1])
			}
		}
		return left, right
	}
	mid := (len(slide.Content) + 1) / 2
	return slide.Content[:mid], slide.Content[mid:]
}

var tableSeparatorRE = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)

// parseMarkdownTable returns the cell grid of the first pipe table in
// the text, separator row excluded. Nil when no table is present.
func parseMarkdownTable(raw string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "|") {
			if len(rows) > 0 {
				break
			}
			continue
		}
		if tableSeparatorRE.MatchString(line) {
			continue
		}
		line = strings.Trim(line, "|")
		var cells []string
		for _, cell := range strings.Split(line, "|") {
			cells = append(cells, strings.TrimSpace(cell))
		}
		rows = append(rows, cells)
	}
	return rows
}
