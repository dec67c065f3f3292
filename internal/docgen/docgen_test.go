package docgen

import "testing"

func TestSlugFilename(t *testing.T) {
	cases := []struct {
		title string
		ext   string
		want  string
	}{
		{"Intro to Cell Biology", ".pdf", "intro-to-cell-biology.pdf"},
		{"  Photosynthesis: Part 2!  ", ".docx", "photosynthesis-part-2.docx"},
		{"!!!", ".pptx", "document.pptx"},
		{"", ".pdf", "document.pdf"},
		{"Already-Slugged", ".pdf", "already-slugged.pdf"},
	}
	for _, tc := range cases {
		if got := SlugFilename(tc.title, tc.ext); got != tc.want {
			t.Fatalf("SlugFilename(%q, %q) = %q, want %q", tc.title, tc.ext, got, tc.want)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := ContentTypeFor("student-handout"); got != ContentTypePDF {
		t.Fatalf("student-handout content type = %q", got)
	}
	if got := ContentTypeFor("instructor-guide"); got != ContentTypeDOCX {
		t.Fatalf("instructor-guide content type = %q", got)
	}
	if got := ContentTypeFor("slide-deck"); got != ContentTypePPTX {
		t.Fatalf("slide-deck content type = %q", got)
	}
	if got := ContentTypeFor("mystery"); got != "application/octet-stream" {
		t.Fatalf("unknown content type = %q", got)
	}
}
