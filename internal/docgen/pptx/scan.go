package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// slidePartRE matches canonical slide paths inside the deck archive,
// capturing the slide number for numeric sort (slide10 after slide9).
var slidePartRE = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// placeholderRE matches well-formed {{tag}} markers. Editors that split
// text runs can break this; the LayoutDiscoverer seam exists so a
// DOM-based scanner can replace it.
var placeholderRE = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// ScanDiscoverer extracts layouts by reading each slide part and
// collecting its placeholder tags, inferring a layout name from the tag
// set.
type ScanDiscoverer struct{}

func NewScanDiscoverer() *ScanDiscoverer { return &ScanDiscoverer{} }

func (d *ScanDiscoverer) Discover(_ string, templateBytes []byte) ([]DiscoveredLayout, error) {
	zr, err := zip.NewReader(bytes.NewReader(templateBytes), int64(len(templateBytes)))
	if err != nil {
		return nil, fmt.Errorf("open template archive: %w", err)
	}

	type slideEntry struct {
		num  int
		file *zip.File
	}
	var entries []slideEntry
	for _, f := range zr.File {
		m := slidePartRE.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		entries = append(entries, slideEntry{n, f})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].num < entries[j].num })

	var layouts []DiscoveredLayout
	for _, e := range entries {
		rc, openErr := e.file.Open()
		if openErr != nil {
			return nil, fmt.Errorf("open slide %d: %w", e.num, openErr)
		}
		raw, readErr := io.ReadAll(rc)
		_ = rc.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read slide %d: %w", e.num, readErr)
		}

		tags := extractTags(string(raw))
		layouts = append(layouts, DiscoveredLayout{
			Name:         inferLayoutName(tags, e.num),
			SlideNumber:  e.num,
			Placeholders: tags,
		})
	}
	return layouts, nil
}

// extractTags returns the slide's placeholder tags in order of first
// appearance, deduplicated.
func extractTags(slideXML string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, m := range placeholderRE.FindAllStringSubmatch(slideXML, -1) {
		tag := m[1]
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// inferLayoutName guesses a human name from the placeholder set. The
// checks run in priority order; an unrecognized set falls back to the
// generic "slide N".
func inferLayoutName(tags []string, slideNumber int) string {
	has := func(exact string) bool {
		for _, t := range tags {
			if t == exact {
				return true
			}
		}
		return false
	}
	anyContains := func(sub string) bool {
		for _, t := range tags {
			if strings.Contains(strings.ToLower(t), sub) {
				return true
			}
		}
		return false
	}

	switch {
	case has("course_title") && anyContains("instructor"):
		return "title slide"
	case anyContains("left_column") && anyContains("right_column"):
		return "two column"
	case anyContains("quote"):
		return "quote"
	case anyContains("question"):
		return "question"
	case anyContains("section"):
		return "section header"
	case anyContains("summary"):
		return "summary"
	case anyContains("title") && (anyContains("content") || anyContains("bullet") || anyContains("body")):
		return "content slide"
	default:
		return fmt.Sprintf("slide %d", slideNumber)
	}
}
