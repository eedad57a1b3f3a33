package docxedit

import (
	"regexp"
	"strings"
	"testing"
)

func TestReplaceAllLiteral(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		pattern string
		replace string
		want    string
	}{
		{
			name:    "whole literal replaced",
			markup:  `<w:r><w:t>NAME</w:t></w:r>`,
			pattern: "NAME",
			replace: "Alice",
			want:    `<w:r><w:t>Alice</w:t></w:r>`,
		},
		{
			name:    "match in the middle",
			markup:  `<w:r><w:t>Dear NAME, welcome</w:t></w:r>`,
			pattern: "NAME",
			replace: "Alice",
			want:    `<w:r><w:t xml:space="preserve">Dear </w:t></w:r><w:r><w:t>Alice, welcome</w:t></w:r>`,
		},
		{
			name:    "properties copied onto new runs",
			markup:  `<w:r><w:rPr><w:b/></w:rPr><w:t>NAME</w:t></w:r>`,
			pattern: "NAME",
			replace: "Alice",
			want:    `<w:r><w:rPr><w:b/></w:rPr><w:t>Alice</w:t></w:r>`,
		},
		{
			name:    "replacement is escaped",
			markup:  `<w:r><w:t>X</w:t></w:r>`,
			pattern: "X",
			replace: "a<b&c",
			want:    `<w:r><w:t>a&lt;b&amp;c</w:t></w:r>`,
		},
		{
			// The pending replacement literal and the following unmatched
			// fragment flush together as one structural run.
			name:    "two matches in one node",
			markup:  `<w:r><w:t>X and X</w:t></w:r>`,
			pattern: "X",
			replace: "Y",
			want:    `<w:r><w:t xml:space="preserve">Y and </w:t></w:r><w:r><w:t>Y</w:t></w:r>`,
		},
		{
			name:    "empty replacement keeps opaque prefix",
			markup:  `<w:bookmarkStart w:id="0" w:name="b"/><w:r><w:t>GONE</w:t></w:r>`,
			pattern: "GONE",
			replace: "",
			want:    `<w:bookmarkStart w:id="0" w:name="b"/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := Decompose(tt.markup)
			got, err := ReplaceAll(runs, regexp.MustCompile(regexp.QuoteMeta(tt.pattern)), tt.replace, nil)
			if err != nil {
				t.Fatalf("ReplaceAll() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReplaceAll() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplaceAllConservation(t *testing.T) {
	// With zero matches anywhere, the output must be byte-identical to
	// plain reconstruction.
	markup := `<w:p><w:pPr><w:jc w:val="both"/></w:pPr><w:r><w:rPr><w:i/></w:rPr><w:t xml:space="preserve"> body </w:t></w:r><w:r><w:br/><w:t>more</w:t></w:r></w:p>`
	runs := Decompose(markup)
	got, err := ReplaceAll(runs, regexp.MustCompile("NO_SUCH_PATTERN"), "x", nil)
	if err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if want := Serialize(runs); got != want {
		t.Errorf("conservation violated:\n got  %q\n want %q", got, want)
	}
	if got != markup {
		t.Errorf("reconstruction not byte-identical:\n got  %q\n want %q", got, markup)
	}
}

func TestReplaceInNodeConservation(t *testing.T) {
	node := Text{XMLBefore: "<w:br/>", Text: "untouched"}
	run := Run{Properties: `<w:rPr><w:b/></w:rPr>`, Texts: []Text{node}}
	got, err := ReplaceInNode(node, regexp.MustCompile("ZZZ"), "x", &ReplaceContext{Run: &run})
	if err != nil {
		t.Fatalf("ReplaceInNode() error = %v", err)
	}
	if want := Serialize([]Run{run}); got != want {
		t.Errorf("ReplaceInNode() = %q, want %q", got, want)
	}
}

func TestReplaceInNodeOpaqueOnly(t *testing.T) {
	// A node with no literal holds only opaque markup; it passes through
	// bare, with no run wrapper around it.
	node := Text{XMLBefore: "<w:br/>"}
	got, err := ReplaceInNode(node, regexp.MustCompile("ZZZ"), "x", nil)
	if err != nil {
		t.Fatalf("ReplaceInNode() error = %v", err)
	}
	if got != "<w:br/>" {
		t.Errorf("ReplaceInNode() = %q, want %q", got, "<w:br/>")
	}
}

func TestReplaceAllCallback(t *testing.T) {
	t.Run("literal result accumulates", func(t *testing.T) {
		runs := Decompose(`<w:r><w:t>X</w:t></w:r>`)
		fn := func(match, xmlBefore string, ctx *ReplaceContext) string {
			return strings.ToLower(match) + "!"
		}
		got, err := ReplaceAll(runs, regexp.MustCompile("X"), ReplaceFunc(fn), nil)
		if err != nil {
			t.Fatalf("ReplaceAll() error = %v", err)
		}
		if want := `<w:r><w:t>x!</w:t></w:r>`; got != want {
			t.Errorf("ReplaceAll() = %q, want %q", got, want)
		}
	})

	t.Run("markup result is spliced verbatim", func(t *testing.T) {
		runs := Decompose(`<w:r><w:t>before IMG after</w:t></w:r>`)
		fn := func(match, xmlBefore string, ctx *ReplaceContext) string {
			return `<w:r><w:drawing/></w:r>`
		}
		got, err := ReplaceAll(runs, regexp.MustCompile("IMG"), ReplaceFunc(fn), nil)
		if err != nil {
			t.Fatalf("ReplaceAll() error = %v", err)
		}
		want := `<w:r><w:t xml:space="preserve">before </w:t></w:r><w:r><w:drawing/></w:r><w:r><w:t xml:space="preserve"> after</w:t></w:r>`
		if got != want {
			t.Errorf("ReplaceAll() = %q, want %q", got, want)
		}
	})

	t.Run("callback receives prefix once", func(t *testing.T) {
		runs := Decompose(`<w:r><w:br/><w:t>X X</w:t></w:r>`)
		var prefixes []string
		fn := func(match, xmlBefore string, ctx *ReplaceContext) string {
			prefixes = append(prefixes, xmlBefore)
			return xmlBefore + `<w:r><w:t>y</w:t></w:r>`
		}
		got, err := ReplaceAll(runs, regexp.MustCompile("X"), ReplaceFunc(fn), nil)
		if err != nil {
			t.Fatalf("ReplaceAll() error = %v", err)
		}
		if len(prefixes) != 2 {
			t.Fatalf("callback invoked %d times, want 2", len(prefixes))
		}
		if prefixes[0] != `<w:br/>` || prefixes[1] != "" {
			t.Errorf("prefix consumption wrong: %q", prefixes)
		}
		want := `<w:br/><w:r><w:t>y</w:t></w:r><w:r><w:t xml:space="preserve"> </w:t></w:r><w:r><w:t>y</w:t></w:r>`
		if got != want {
			t.Errorf("ReplaceAll() = %q, want %q", got, want)
		}
	})

	t.Run("callback context carries enclosing run", func(t *testing.T) {
		runs := Decompose(`<w:r><w:rPr><w:b/></w:rPr><w:t>X</w:t></w:r>`)
		fn := func(match, xmlBefore string, ctx *ReplaceContext) string {
			return `<w:r>` + ctx.Run.Properties + `<w:t>z</w:t></w:r>`
		}
		got, err := ReplaceAll(runs, regexp.MustCompile("X"), ReplaceFunc(fn), nil)
		if err != nil {
			t.Fatalf("ReplaceAll() error = %v", err)
		}
		if want := `<w:r><w:rPr><w:b/></w:rPr><w:t>z</w:t></w:r>`; got != want {
			t.Errorf("ReplaceAll() = %q, want %q", got, want)
		}
	})

	t.Run("open run forces bare text emission", func(t *testing.T) {
		runs := Decompose(`<w:r><w:t>X tail</w:t></w:r>`)
		fn := func(match, xmlBefore string, ctx *ReplaceContext) string {
			// Leaves a run interior open on purpose.
			return `<w:r><w:t>y</w:t>`
		}
		got, err := ReplaceAll(runs, regexp.MustCompile("X"), ReplaceFunc(fn), nil)
		if err != nil {
			t.Fatalf("ReplaceAll() error = %v", err)
		}
		want := `<w:r><w:t>y</w:t><w:t xml:space="preserve"> tail</w:t>`
		if got != want {
			t.Errorf("ReplaceAll() = %q, want %q", got, want)
		}
	})
}

func TestReplacePatternValidation(t *testing.T) {
	runs := Decompose(`<w:r><w:t>x</w:t></w:r>`)

	_, err := ReplaceAll(runs, regexp.MustCompile("(x)"), "y", nil)
	if err == nil {
		t.Fatal("expected error for capturing group")
	}
	if !IsConfigError(err) {
		t.Errorf("error = %v, want ConfigError", err)
	}

	_, err = ReplaceAll(runs, nil, "y", nil)
	if err == nil {
		t.Fatal("expected error for nil pattern")
	}

	_, err = ReplaceAll(runs, regexp.MustCompile("x"), 42, nil)
	if err == nil {
		t.Fatal("expected error for bad replacement type")
	}
	if !IsConfigError(err) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestStateAfter(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		current  emitState
		want     emitState
	}{
		{"no run tags keeps state", `<w:drawing/>`, emitRunLevel, emitRunLevel},
		{"no run tags keeps inline", `<w:t>x</w:t>`, emitInline, emitInline},
		{"complete run stays at run level", `<w:r><w:t>x</w:t></w:r>`, emitRunLevel, emitRunLevel},
		{"trailing open goes inline", `</w:r><w:pict/><w:r><w:rPr/>`, emitRunLevel, emitInline},
		{"trailing close returns to run level", `<w:t>x</w:t></w:r>`, emitInline, emitRunLevel},
		{"open with attributes", `<w:r w:rsidR="00000000">`, emitRunLevel, emitInline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stateAfter(tt.fragment, tt.current); got != tt.want {
				t.Errorf("stateAfter(%q) = %v, want %v", tt.fragment, got, tt.want)
			}
		})
	}
}
