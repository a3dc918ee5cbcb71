package notes

import (
	"strings"
	"testing"
)

func TestMarkdownImporter_HeadingNesting(t *testing.T) {
	input := "# Lecture 4\n\nIntro text.\n\n## Integrals\n\nBody of integrals.\n\n## Series\n\nBody of series.\n"
	p := &MarkdownImporter{}
	o, err := p.Import(strings.NewReader(input), "lecture4.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(o.Sections) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(o.Sections))
	}
	top := o.Sections[0]
	if top.Title != "Lecture 4" {
		t.Errorf("expected title %q, got %q", "Lecture 4", top.Title)
	}
	if top.Text != "Intro text." {
		t.Errorf("expected intro text, got %q", top.Text)
	}
	if len(top.Children) != 2 {
		t.Fatalf("expected 2 subsections, got %d", len(top.Children))
	}
	if top.Children[0].Title != "Integrals" || top.Children[1].Title != "Series" {
		t.Errorf("subsection titles mismatch: %q, %q", top.Children[0].Title, top.Children[1].Title)
	}
	if top.Children[0].Text != "Body of integrals." {
		t.Errorf("subsection text mismatch: %q", top.Children[0].Text)
	}
}

func TestMarkdownImporter_NoHeadings(t *testing.T) {
	input := "Just a paragraph.\n\nAnd another."
	p := &MarkdownImporter{}
	o, err := p.Import(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(o.Sections) != 1 {
		t.Fatalf("expected everything in one section, got %d", len(o.Sections))
	}
	if !strings.Contains(o.Sections[0].Text, "Just a paragraph.") {
		t.Errorf("section text mismatch: %q", o.Sections[0].Text)
	}
}

func TestMarkdownImporter_SiblingHeadingsPopTheStack(t *testing.T) {
	input := "## A\n\ntext a\n\n# B\n\ntext b\n"
	p := &MarkdownImporter{}
	o, err := p.Import(strings.NewReader(input), "mixed.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "# B" is shallower than "## A", so both end up top-level.
	if len(o.Sections) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(o.Sections))
	}
	if o.Sections[0].Title != "A" || o.Sections[1].Title != "B" {
		t.Errorf("titles mismatch: %q, %q", o.Sections[0].Title, o.Sections[1].Title)
	}
}

func TestForFileRegistry(t *testing.T) {
	for _, name := range []string{"a.txt", "a.md", "a.markdown", "a.html", "a.htm", "a.docx"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("expected importer for %s: %v", name, err)
		}
	}
	if _, err := ForFile("a.csv"); err == nil {
		t.Error("expected csv to be rejected")
	}
}
