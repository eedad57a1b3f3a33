package docxedit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Run is a formatting-scoped group of literal text leaves sharing one
// properties block. XMLBefore holds the opaque markup that immediately
// preceded the run in document order; it is always present and may be empty.
// Properties holds the raw <w:rPr> block, unparsed; the engine compares it
// only for byte equality.
type Run struct {
	XMLBefore  string
	Properties string
	Texts      []Text
}

// Text is one literal text leaf together with the opaque markup that
// immediately preceded it inside the enclosing run.
type Text struct {
	XMLBefore string
	Text      string
}

// IsOpaque reports whether the run contributes only its opaque prefix to
// serialized output. A run without text leaves emits no <w:r> wrapper; see
// Serialize.
func (r *Run) IsOpaque() bool {
	return len(r.Texts) == 0
}

// VisibleText returns the concatenation of the run's literal text leaves.
func (r *Run) VisibleText() string {
	var b strings.Builder
	for i := range r.Texts {
		b.WriteString(r.Texts[i].Text)
	}
	return b.String()
}

// ExtractRunsText returns the concatenation of all literal text leaves of
// all runs, in document order.
func ExtractRunsText(runs []Run) string {
	var b strings.Builder
	for i := range runs {
		for j := range runs[i].Texts {
			b.WriteString(runs[i].Texts[j].Text)
		}
	}
	return b.String()
}

// Serialize reconstructs a markup string from a run sequence. It is the
// exact left inverse of Decompose on markup that round-trips: opaque
// prefixes are emitted verbatim and structured tags are serialized freshly.
//
// A run with no text leaves contributes only its XMLBefore; its wrapper tags
// are not restored. Decompose with KeepEmptyRunMarkup preserves such
// wrappers as opaque markup instead.
func Serialize(runs []Run) string {
	var b strings.Builder
	for i := range runs {
		serializeRun(&b, &runs[i])
	}
	return b.String()
}

func serializeRun(b *strings.Builder, r *Run) {
	b.WriteString(r.XMLBefore)
	if len(r.Texts) == 0 {
		return
	}
	b.WriteString("<w:r>")
	if r.Properties != "" {
		b.WriteString(r.Properties)
	}
	for i := range r.Texts {
		b.WriteString(r.Texts[i].XMLBefore)
		writeTextLeaf(b, r.Texts[i].Text)
	}
	b.WriteString("</w:r>")
}

// writeTextLeaf serializes one literal value as a <w:t> element. The
// xml:space="preserve" attribute is added exactly when the literal starts or
// ends with whitespace, because consumers collapse unmarked edge whitespace.
// An empty literal emits nothing.
func writeTextLeaf(b *strings.Builder, literal string) {
	if literal == "" {
		return
	}
	if needsSpacePreserve(literal) {
		b.WriteString(`<w:t xml:space="preserve">`)
	} else {
		b.WriteString("<w:t>")
	}
	b.WriteString(escapeText(literal))
	b.WriteString("</w:t>")
}

func needsSpacePreserve(literal string) bool {
	first, _ := utf8.DecodeRuneInString(literal)
	if unicode.IsSpace(first) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(literal)
	return unicode.IsSpace(last)
}

// mergeTexts folds src into dst. It fails if src carries opaque markup,
// because merging would silently drop it.
func mergeTexts(dst *Text, src *Text) error {
	if src.XMLBefore != "" {
		return NewStructuralError("merge texts", "second text node carries opaque markup", src.XMLBefore)
	}
	dst.Text += src.Text
	return nil
}
