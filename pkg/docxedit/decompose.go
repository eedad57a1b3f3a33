package docxedit

import (
	"regexp"
)

var (
	// runPattern matches one <w:r> element, capturing its optional
	// properties block (group 1, tags included) and its interior (group 2).
	// Attributes on the run tag itself are not modeled; Serialize restores a
	// bare <w:r>. Scrub removes the revision-save attributes that would
	// otherwise be affected.
	runPattern = regexp.MustCompile(`(?s)<w:r(?: [^>]*)?>(<w:rPr(?: [^>]*)?/>|<w:rPr(?: [^>]*)?>.*?</w:rPr>)?(.*?)</w:r>`)

	// textPattern matches one <w:t> element, capturing the literal content
	// (group 1, absent for the self-closing form).
	textPattern = regexp.MustCompile(`(?s)<w:t(?: [^>]*)?>(.*?)</w:t>|<w:t(?: [^>]*)?/>`)
)

// DecomposeOptions controls corner cases of the decomposition.
type DecomposeOptions struct {
	// KeepEmptyRunMarkup folds a run that has no text leaves back into the
	// opaque stream as raw markup, so its wrapper tags (and properties)
	// survive reconstruction byte-for-byte. The default behavior keeps such
	// a run as a structured entity whose wrapper is silently dropped on
	// serialization.
	KeepEmptyRunMarkup bool
}

// Decompose converts a markup string into an ordered run sequence.
// Everything the engine does not model becomes opaque markup attached as a
// prefix to the next structured entity; a trailing remainder is carried by a
// synthetic run with no text leaves.
func Decompose(markup string) []Run {
	return DecomposeWithOptions(markup, DecomposeOptions{})
}

// DecomposeWithOptions is Decompose with explicit corner-case control.
func DecomposeWithOptions(markup string, opts DecomposeOptions) []Run {
	var runs []Run
	carry := ""
	prev := 0
	for _, m := range runPattern.FindAllStringSubmatchIndex(markup, -1) {
		r := Run{XMLBefore: carry + markup[prev:m[0]]}
		carry = ""
		if m[2] >= 0 {
			r.Properties = markup[m[2]:m[3]]
		}
		r.Texts = decomposeTexts(markup[m[4]:m[5]])
		if opts.KeepEmptyRunMarkup && len(r.Texts) == 0 {
			// The whole matched run becomes opaque markup for the next
			// entity.
			carry = r.XMLBefore + markup[m[0]:m[1]]
			prev = m[1]
			continue
		}
		prev = m[1]
		if r.XMLBefore == "" && len(r.Texts) == 0 {
			continue
		}
		runs = append(runs, r)
	}
	if tail := carry + markup[prev:]; tail != "" {
		runs = append(runs, Run{XMLBefore: tail})
	}
	return runs
}

// decomposeTexts splits a run interior into text leaves. A remainder after
// the last <w:t> is carried by a leaf with an empty literal.
func decomposeTexts(interior string) []Text {
	var texts []Text
	prev := 0
	for _, m := range textPattern.FindAllStringSubmatchIndex(interior, -1) {
		t := Text{XMLBefore: interior[prev:m[0]]}
		if m[2] >= 0 {
			t.Text = unescapeText(interior[m[2]:m[3]])
		}
		texts = append(texts, t)
		prev = m[1]
	}
	if tail := interior[prev:]; tail != "" {
		texts = append(texts, Text{XMLBefore: tail})
	}
	return texts
}

// ExtractText returns the plain text of a markup fragment: the concatenation
// of all literal text leaves in document order, entity-decoded.
func ExtractText(markup string) string {
	return ExtractRunsText(Decompose(markup))
}
