package docxedit

import (
	"regexp"
)

// scrubPatterns is the fixed list of cosmetic markup removed by Scrub.
// These are the spell/grammar markers and revision-save bookkeeping Word
// sprinkles through a document; they fragment runs that are otherwise
// mergeable and carry no content.
var scrubPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<w:proofErr [^>]*/>`),
	regexp.MustCompile(`<w:noProof/>`),
	regexp.MustCompile(` w:rsid(?:R|RPr|RDefault|P|Del|Tr|Sect)?="[0-9A-Fa-f]{8}"`),
	regexp.MustCompile(`<w:lastRenderedPageBreak/>`),
	regexp.MustCompile(`<w:rPr></w:rPr>`),
	regexp.MustCompile(`<w:rPr/>`),
}

// Scrub removes fixed cosmetic patterns from a markup string. It changes no
// visible content and is idempotent; running it before MergeRuns lets
// adjacent runs that were split only by proofing markers coalesce.
func Scrub(markup string) string {
	for _, p := range scrubPatterns {
		markup = p.ReplaceAllString(markup, "")
	}
	return markup
}
