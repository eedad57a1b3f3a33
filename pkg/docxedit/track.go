package docxedit

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// RevisionCounter hands out the monotonically increasing revision ids that
// tracked-change markup requires. It is an explicit object passed to the
// functions that need it; there is no package-level counter.
type RevisionCounter struct {
	mu   sync.Mutex
	next int
}

// NewRevisionCounter creates a counter whose first id is start, or 1 if
// start is not positive.
func NewRevisionCounter(start int) *RevisionCounter {
	if start < 1 {
		start = 1
	}
	return &RevisionCounter{next: start}
}

// Next returns the next revision id.
func (c *RevisionCounter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	return id
}

// ChangeMeta identifies the author and timestamp stamped onto tracked
// changes.
type ChangeMeta struct {
	Author string
	Date   time.Time
}

func (m ChangeMeta) attrs(id int) string {
	return fmt.Sprintf(` w:id="%d" w:author="%s" w:date="%s"`, id, escapeAttr(m.Author), m.Date.UTC().Format("2006-01-02T15:04:05Z"))
}

// InsertedRun wraps a fresh run in tracked-insertion markup.
func InsertedRun(rc *RevisionCounter, meta ChangeMeta, properties, text string) string {
	var b strings.Builder
	b.WriteString("<w:ins")
	b.WriteString(meta.attrs(rc.Next()))
	b.WriteString("><w:r>")
	b.WriteString(properties)
	writeTextLeaf(&b, text)
	b.WriteString("</w:r></w:ins>")
	return b.String()
}

// DeletedRun wraps the original text in tracked-deletion markup. Deleted
// literals live in w:delText rather than w:t.
func DeletedRun(rc *RevisionCounter, meta ChangeMeta, properties, text string) string {
	var b strings.Builder
	b.WriteString("<w:del")
	b.WriteString(meta.attrs(rc.Next()))
	b.WriteString("><w:r>")
	b.WriteString(properties)
	if text != "" {
		if needsSpacePreserve(text) {
			b.WriteString(`<w:delText xml:space="preserve">`)
		} else {
			b.WriteString("<w:delText>")
		}
		b.WriteString(escapeText(text))
		b.WriteString("</w:delText>")
	}
	b.WriteString("</w:r></w:del>")
	return b.String()
}

// TrackedReplacement builds a replacement callback that records each match
// as a tracked deletion followed by a tracked insertion of replacement,
// copying the enclosing run's formatting onto both.
func TrackedReplacement(rc *RevisionCounter, meta ChangeMeta, replacement string) ReplaceFunc {
	return func(match, xmlBefore string, ctx *ReplaceContext) string {
		props := ""
		if ctx != nil && ctx.Run != nil {
			props = ctx.Run.Properties
		}
		return xmlBefore + DeletedRun(rc, meta, props, match) + InsertedRun(rc, meta, props, replacement)
	}
}
