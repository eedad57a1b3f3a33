package docxedit

import (
	"regexp"
	"strings"
)

// NamePredicate classifies a bookmark name for an erasure policy. A nil
// predicate matches nothing.
type NamePredicate func(name string) bool

// Names builds a predicate matching an exact set of bookmark names.
func Names(names ...string) NamePredicate {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

// NameRegexp builds a predicate matching bookmark names against a pattern.
func NameRegexp(pattern *regexp.Regexp) NamePredicate {
	return func(name string) bool { return pattern.MatchString(name) }
}

const (
	bookmarkStart = iota
	bookmarkEnd
)

// BookmarkBoundaryNode is one bookmark marker in the specialized bookmark
// split. ID correlates Start/End pairs; Name is only recorded on Start.
type BookmarkBoundaryNode struct {
	Kind      int
	ID        string
	Name      string
	XMLBefore string
	NodeXML   string
}

var (
	bookmarkPattern = regexp.MustCompile(`<w:bookmarkStart\b[^>]*/?>|<w:bookmarkEnd\b[^>]*/?>`)
	idAttrPattern   = regexp.MustCompile(`w:id="([^"]*)"`)
	nameAttrPattern = regexp.MustCompile(`w:name="([^"]*)"`)
)

// splitBookmarkBoundaries splits a markup string by bookmark markers.
// Bookmark boundaries do not align with run boundaries, so this split is
// independent of the run/text decomposition. Returns the marker nodes and
// the trailing remainder.
func splitBookmarkBoundaries(markup string) ([]BookmarkBoundaryNode, string) {
	var nodes []BookmarkBoundaryNode
	prev := 0
	for _, m := range bookmarkPattern.FindAllStringIndex(markup, -1) {
		n := BookmarkBoundaryNode{
			XMLBefore: markup[prev:m[0]],
			NodeXML:   markup[m[0]:m[1]],
		}
		if strings.HasPrefix(n.NodeXML, "<w:bookmarkEnd") {
			n.Kind = bookmarkEnd
		} else {
			n.Kind = bookmarkStart
			if attr := nameAttrPattern.FindStringSubmatch(n.NodeXML); attr != nil {
				n.Name = unescapeText(attr[1])
			}
		}
		if attr := idAttrPattern.FindStringSubmatch(n.NodeXML); attr != nil {
			n.ID = attr[1]
		}
		nodes = append(nodes, n)
		prev = m[1]
	}
	return nodes, markup[prev:]
}

// SuppressBookmarks erases bookmarks in a single pass, matching Start/End
// markers by identifier. A name matching fullRange loses its markers and
// everything textually between them; a name matching markupOnly loses only
// its markers; a name matching neither is left alone. An End whose Start was
// already erased by an enclosing erasure is cleared silently. A full-range
// erasure that would truncate a still-open foreign bookmark is a
// StructuralError, reported with the input left untouched.
func SuppressBookmarks(markup string, fullRange, markupOnly NamePredicate) (string, error) {
	nodes, trailing, err := suppressBookmarkNodes(markup, fullRange, markupOnly)
	if err != nil {
		return "", err
	}
	GetLogger().Debug("processed %d bookmark boundaries", len(nodes))
	var b strings.Builder
	for i := range nodes {
		b.WriteString(nodes[i].XMLBefore)
		b.WriteString(nodes[i].NodeXML)
	}
	b.WriteString(trailing)
	return b.String(), nil
}

func suppressBookmarkNodes(markup string, fullRange, markupOnly NamePredicate) ([]BookmarkBoundaryNode, string, error) {
	nodes, trailing := splitBookmarkBoundaries(markup)
	open := make(map[string]int)
	for i := range nodes {
		switch nodes[i].Kind {
		case bookmarkStart:
			if _, dup := open[nodes[i].ID]; dup {
				return nil, "", NewStructuralError("suppress bookmarks", "duplicate bookmark start id "+nodes[i].ID, nodes[i].NodeXML)
			}
			open[nodes[i].ID] = i
		case bookmarkEnd:
			si, ok := open[nodes[i].ID]
			if !ok {
				// The start was erased as part of an enclosing erasure;
				// clear the orphaned end silently.
				nodes[i].NodeXML = ""
				continue
			}
			delete(open, nodes[i].ID)
			name := nodes[si].Name
			switch {
			case fullRange != nil && fullRange(name):
				if err := eraseFullRange(nodes, open, si, i); err != nil {
					return nil, "", err
				}
			case markupOnly != nil && markupOnly(name):
				nodes[si].NodeXML = ""
				nodes[i].NodeXML = ""
			}
		}
	}
	return nodes, trailing, nil
}

// eraseFullRange clears the Start and End markers at si and ei and every
// node strictly between them. A node in between that still carries the
// non-empty Start of a different, still-open bookmark marks a partial
// overlap: erasing would truncate that bookmark asymmetrically, which is
// never resolved automatically.
func eraseFullRange(nodes []BookmarkBoundaryNode, open map[string]int, si, ei int) error {
	for j := si + 1; j < ei; j++ {
		if nodes[j].Kind != bookmarkStart || nodes[j].NodeXML == "" {
			continue
		}
		if _, stillOpen := open[nodes[j].ID]; stillOpen {
			return NewStructuralError("suppress bookmarks",
				"erasure range of bookmark "+nodes[si].Name+" overlaps open bookmark "+nodes[j].Name,
				nodes[j].NodeXML)
		}
	}
	for j := si + 1; j < ei; j++ {
		nodes[j].XMLBefore = ""
		nodes[j].NodeXML = ""
	}
	nodes[si].NodeXML = ""
	nodes[ei].XMLBefore = ""
	nodes[ei].NodeXML = ""
	return nil
}
