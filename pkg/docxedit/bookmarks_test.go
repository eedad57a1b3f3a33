package docxedit

import (
	"regexp"
	"strings"
	"testing"
)

func TestSuppressBookmarks(t *testing.T) {
	wrapped := `<w:r><w:t>A</w:t></w:r>` +
		`<w:bookmarkStart w:id="1" w:name="X"/>` +
		`<w:r><w:t>B</w:t></w:r>` +
		`<w:bookmarkEnd w:id="1"/>` +
		`<w:r><w:t>C</w:t></w:r>`

	tests := []struct {
		name       string
		markup     string
		fullRange  NamePredicate
		markupOnly NamePredicate
		want       string
	}{
		{
			name:      "full range erases markers and contents",
			markup:    wrapped,
			fullRange: Names("X"),
			want:      `<w:r><w:t>A</w:t></w:r><w:r><w:t>C</w:t></w:r>`,
		},
		{
			name:       "markup only erases markers keeps contents",
			markup:     wrapped,
			markupOnly: Names("X"),
			want:       `<w:r><w:t>A</w:t></w:r><w:r><w:t>B</w:t></w:r><w:r><w:t>C</w:t></w:r>`,
		},
		{
			name:       "no policy match leaves input unchanged",
			markup:     wrapped,
			fullRange:  Names("other"),
			markupOnly: Names("another"),
			want:       wrapped,
		},
		{
			name:   "nil policies leave input unchanged",
			markup: wrapped,
			want:   wrapped,
		},
		{
			name:      "regexp policy",
			markup:    wrapped,
			fullRange: NameRegexp(regexp.MustCompile(`^_?X$`)),
			want:      `<w:r><w:t>A</w:t></w:r><w:r><w:t>C</w:t></w:r>`,
		},
		{
			name: "nested bookmark erased with enclosing range",
			markup: `<w:bookmarkStart w:id="1" w:name="outer"/>` +
				`<w:r><w:t>a</w:t></w:r>` +
				`<w:bookmarkStart w:id="2" w:name="inner"/>` +
				`<w:r><w:t>b</w:t></w:r>` +
				`<w:bookmarkEnd w:id="2"/>` +
				`<w:r><w:t>c</w:t></w:r>` +
				`<w:bookmarkEnd w:id="1"/>` +
				`<w:r><w:t>d</w:t></w:r>`,
			fullRange: Names("outer"),
			want:      `<w:r><w:t>d</w:t></w:r>`,
		},
		{
			name: "nested markup-only inside untouched outer",
			markup: `<w:bookmarkStart w:id="1" w:name="outer"/>` +
				`<w:bookmarkStart w:id="2" w:name="inner"/>` +
				`<w:r><w:t>b</w:t></w:r>` +
				`<w:bookmarkEnd w:id="2"/>` +
				`<w:bookmarkEnd w:id="1"/>`,
			markupOnly: Names("inner"),
			want: `<w:bookmarkStart w:id="1" w:name="outer"/>` +
				`<w:r><w:t>b</w:t></w:r>` +
				`<w:bookmarkEnd w:id="1"/>`,
		},
		{
			name:      "orphan end cleared silently",
			markup:    `<w:r><w:t>a</w:t></w:r><w:bookmarkEnd w:id="9"/><w:r><w:t>b</w:t></w:r>`,
			fullRange: Names("X"),
			want:      `<w:r><w:t>a</w:t></w:r><w:r><w:t>b</w:t></w:r>`,
		},
		{
			name: "independent sibling policies",
			markup: `<w:bookmarkStart w:id="1" w:name="gone"/>` +
				`<w:r><w:t>a</w:t></w:r>` +
				`<w:bookmarkEnd w:id="1"/>` +
				`<w:bookmarkStart w:id="2" w:name="bare"/>` +
				`<w:r><w:t>b</w:t></w:r>` +
				`<w:bookmarkEnd w:id="2"/>`,
			fullRange:  Names("gone"),
			markupOnly: Names("bare"),
			want:       `<w:r><w:t>b</w:t></w:r>`,
		},
		{
			name:      "bookmark name entity decoded before matching",
			markup:    `<w:bookmarkStart w:id="1" w:name="a&amp;b"/>x<w:bookmarkEnd w:id="1"/>`,
			fullRange: Names("a&b"),
			want:      ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SuppressBookmarks(tt.markup, tt.fullRange, tt.markupOnly)
			if err != nil {
				t.Fatalf("SuppressBookmarks() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SuppressBookmarks() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuppressBookmarksOverlap(t *testing.T) {
	// Start1, Start2, End1, End2: erasing bookmark one's range would drop
	// bookmark two's start while its end survives.
	crossing := `<w:bookmarkStart w:id="1" w:name="one"/>` +
		`<w:r><w:t>x</w:t></w:r>` +
		`<w:bookmarkStart w:id="2" w:name="two"/>` +
		`<w:r><w:t>y</w:t></w:r>` +
		`<w:bookmarkEnd w:id="1"/>` +
		`<w:r><w:t>z</w:t></w:r>` +
		`<w:bookmarkEnd w:id="2"/>`

	_, err := SuppressBookmarks(crossing, Names("one"), nil)
	if err == nil {
		t.Fatal("SuppressBookmarks() expected overlap error, got nil")
	}
	if !IsStructuralError(err) {
		t.Errorf("SuppressBookmarks() error = %T, want *StructuralError", err)
	}
	if !strings.Contains(err.Error(), "overlaps open bookmark") {
		t.Errorf("SuppressBookmarks() error = %q, want overlap message", err.Error())
	}
}

func TestSuppressBookmarksDuplicateStart(t *testing.T) {
	markup := `<w:bookmarkStart w:id="1" w:name="a"/><w:bookmarkStart w:id="1" w:name="b"/>`
	_, err := SuppressBookmarks(markup, nil, nil)
	if err == nil {
		t.Fatal("SuppressBookmarks() expected duplicate id error, got nil")
	}
	if !IsStructuralError(err) {
		t.Errorf("SuppressBookmarks() error = %T, want *StructuralError", err)
	}
}

func TestNamePredicates(t *testing.T) {
	set := Names("a", "b")
	if !set("a") || !set("b") || set("c") {
		t.Error("Names() predicate classifies wrong")
	}
	re := NameRegexp(regexp.MustCompile(`^_Toc\d+$`))
	if !re("_Toc12345") || re("_Ref12345") {
		t.Error("NameRegexp() predicate classifies wrong")
	}
}
