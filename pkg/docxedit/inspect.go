package docxedit

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// PartReport summarizes the structure of one document part after an edit:
// element counts the engine cares about, gathered by XPath over the
// reconstructed markup.
type PartReport struct {
	Runs           int
	Texts          int
	FieldChars     int
	SimpleFields   int
	BookmarkStarts int
	BookmarkEnds   int
	VisibleText    string
}

// ValidatePart checks a reconstructed markup fragment for well-formedness.
// The fragment is wrapped in a synthetic root so sibling top-level elements
// and undeclared namespace prefixes are accepted.
func ValidatePart(markup string) error {
	decoder := xml.NewDecoder(strings.NewReader(wrapFragment(markup)))
	// The engine's output must never depend on entity expansion beyond the
	// predefined five.
	decoder.Entity = map[string]string{}
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return NewDocumentError("validate", "", err)
		}
	}
}

// Inspect parses a markup fragment and counts its structured elements. It is
// a read-only diagnostic over engine output; the engine itself never parses
// a tree.
func Inspect(markup string) (*PartReport, error) {
	doc, err := xmlquery.Parse(strings.NewReader(wrapFragment(markup)))
	if err != nil {
		return nil, NewDocumentError("inspect", "", err)
	}

	report := &PartReport{VisibleText: ExtractText(markup)}
	counts := []struct {
		expr string
		dst  *int
	}{
		{"//r", &report.Runs},
		{"//t", &report.Texts},
		{"//fldChar", &report.FieldChars},
		{"//fldSimple", &report.SimpleFields},
		{"//bookmarkStart", &report.BookmarkStarts},
		{"//bookmarkEnd", &report.BookmarkEnds},
	}
	for _, c := range counts {
		n, err := countNodes(doc, c.expr)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return report, nil
}

func countNodes(doc *xmlquery.Node, expr string) (int, error) {
	// Compile the expression to check for errors
	if _, err := xpath.Compile(expr); err != nil {
		return 0, fmt.Errorf("invalid xpath: %w", err)
	}
	nodes, err := xmlquery.QueryAll(doc, expr)
	if err != nil {
		return 0, fmt.Errorf("xpath query failed: %w", err)
	}
	return len(nodes), nil
}

// wrapFragment declares the WordprocessingML namespace prefixes a body
// fragment uses without carrying declarations of its own.
func wrapFragment(markup string) string {
	return `<root xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
		` xmlns:xml="http://www.w3.org/XML/1998/namespace">` + markup + `</root>`
}
