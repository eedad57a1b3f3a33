package docxedit

import (
	"regexp"
	"strings"
)

// FieldStatus is the lifecycle state of a field record: Begin while its
// instruction code is being collected, Separate while its cached result is
// being collected, End once closed.
type FieldStatus int

const (
	FieldBegin FieldStatus = iota
	FieldSeparate
	FieldEnd
)

func (s FieldStatus) String() string {
	switch s {
	case FieldBegin:
		return "begin"
	case FieldSeparate:
		return "separate"
	case FieldEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Field is one resolved top-level field: its instruction code, the markup of
// its cached result, and the opaque markup that preceded it in document
// order. A field nested inside another field's code appears bracketed inside
// the parent's Code; one nested inside a result is folded into the parent's
// Result markup. Nested fields are never exposed as top-level records.
type Field struct {
	Code      string
	Result    string
	XMLBefore string
	Status    FieldStatus

	// raw is the field's full markup span, begin marker through end marker
	// inclusive. RewriteFields uses it to skip the original span.
	raw string
}

// FieldTransform produces the markup that replaces one resolved field.
type FieldTransform func(code, result string) string

const (
	fieldKindBegin = iota
	fieldKindSeparate
	fieldKindEnd
	fieldKindSimple
)

// fieldBoundaryNode is one boundary marker in the specialized field split:
// a w:fldChar of type begin/separate/end, or a self-contained w:fldSimple
// carrying its instruction as an attribute and its result inline.
type fieldBoundaryNode struct {
	kind      int
	xmlBefore string
	nodeXML   string
	instr     string // simple fields only
	inner     string // simple fields only
}

var (
	fieldMarkerPattern = regexp.MustCompile(`(?s)<w:fldChar\b[^>]*w:fldCharType="(begin|separate|end)"[^>]*/?>|<w:fldSimple\b[^>]*?(?:/>|>(.*?)</w:fldSimple>)`)
	instrTextPattern   = regexp.MustCompile(`(?s)<w:instrText(?: [^>]*)?>(.*?)</w:instrText>`)
	instrAttrPattern   = regexp.MustCompile(`w:instr="([^"]*)"`)
)

// splitFieldBoundaries runs the field-specific split: boundary markers do
// not align with run boundaries, so the resolver never reuses the run/text
// decomposition. Returns the marker nodes and the trailing remainder.
func splitFieldBoundaries(markup string) ([]fieldBoundaryNode, string) {
	var nodes []fieldBoundaryNode
	prev := 0
	for _, m := range fieldMarkerPattern.FindAllStringSubmatchIndex(markup, -1) {
		n := fieldBoundaryNode{
			xmlBefore: markup[prev:m[0]],
			nodeXML:   markup[m[0]:m[1]],
		}
		if m[2] >= 0 {
			switch markup[m[2]:m[3]] {
			case "begin":
				n.kind = fieldKindBegin
			case "separate":
				n.kind = fieldKindSeparate
			case "end":
				n.kind = fieldKindEnd
			}
		} else {
			n.kind = fieldKindSimple
			if attr := instrAttrPattern.FindStringSubmatch(n.nodeXML); attr != nil {
				n.instr = unescapeText(attr[1])
			}
			if m[4] >= 0 {
				n.inner = markup[m[4]:m[5]]
			}
		}
		nodes = append(nodes, n)
		prev = m[1]
	}
	return nodes, markup[prev:]
}

// instrTextIn collects the instruction-text spans out of a markup slice,
// entity-decoded and concatenated in order.
func instrTextIn(markup string) string {
	var b strings.Builder
	for _, m := range instrTextPattern.FindAllStringSubmatch(markup, -1) {
		b.WriteString(unescapeText(m[1]))
	}
	return b.String()
}

// fieldResolver is the stack machine that reconstructs a forest of
// (code, result) fields from the linear boundary-marker stream.
type fieldResolver struct {
	stack         []*Field
	pendingPrefix strings.Builder
	maxDepth      int
}

// openDepth counts the fields still collecting code or result.
func (fr *fieldResolver) openDepth() int {
	depth := 0
	for _, f := range fr.stack {
		if f.Status != FieldEnd {
			depth++
		}
	}
	return depth
}

// openTop returns the deepest field still collecting code or result. Closed
// top-level records remain on the stack below the open ones.
func (fr *fieldResolver) openTop() *Field {
	for i := len(fr.stack) - 1; i >= 0; i-- {
		if fr.stack[i].Status != FieldEnd {
			return fr.stack[i]
		}
	}
	return nil
}

// openParentBelow returns the nearest open field below the given stack top.
func (fr *fieldResolver) openParentBelow(top int) *Field {
	for i := top - 1; i >= 0; i-- {
		if fr.stack[i].Status != FieldEnd {
			return fr.stack[i]
		}
	}
	return nil
}

// routePrefix sends opaque markup preceding a marker to its owner: the code
// zone of an open field in Begin (instruction text extracted), the result
// zone of an open field in Separate (raw), or the pending prefix of the next
// top-level record.
func (fr *fieldResolver) routePrefix(xmlBefore string) {
	top := fr.openTop()
	if top == nil {
		fr.pendingPrefix.WriteString(xmlBefore)
		return
	}
	switch top.Status {
	case FieldBegin:
		top.Code += instrTextIn(xmlBefore)
	case FieldSeparate:
		top.Result += xmlBefore
	}
}

// absorbRaw appends a marker's span to the raw accumulator of every open
// field, so a closed child can later be folded verbatim into its parent.
func (fr *fieldResolver) absorbRaw(span string) {
	for _, f := range fr.stack {
		if f.Status != FieldEnd {
			f.raw += span
		}
	}
}

func (fr *fieldResolver) takePendingPrefix() string {
	p := fr.pendingPrefix.String()
	fr.pendingPrefix.Reset()
	return p
}

// bracketCode is the escaped representation of a nested field's code inside
// its parent's instruction.
func bracketCode(code string) string {
	return "{" + code + "}"
}

func (fr *fieldResolver) process(n *fieldBoundaryNode) error {
	fr.routePrefix(n.xmlBefore)
	fr.absorbRaw(n.xmlBefore + n.nodeXML)

	switch n.kind {
	case fieldKindBegin:
		if fr.maxDepth > 0 && fr.openDepth() >= fr.maxDepth {
			return NewStructuralError("resolve fields", "field nesting exceeds configured depth limit", n.nodeXML)
		}
		f := &Field{Status: FieldBegin, raw: n.nodeXML}
		if fr.openTop() == nil {
			f.XMLBefore = fr.takePendingPrefix()
		}
		fr.stack = append(fr.stack, f)

	case fieldKindSeparate:
		top := fr.openTop()
		if top == nil {
			return NewStructuralError("resolve fields", "separate marker without open begin", n.nodeXML)
		}
		if top.Status != FieldBegin {
			return NewStructuralError("resolve fields", "separate marker repeated for field "+top.Code, n.nodeXML)
		}
		top.Status = FieldSeparate

	case fieldKindEnd:
		top := fr.openTop()
		if top == nil {
			return NewStructuralError("resolve fields", "end marker without open begin", n.nodeXML)
		}
		top.Status = FieldEnd
		idx := fr.indexOf(top)
		parent := fr.openParentBelow(idx)
		if parent == nil {
			return nil
		}
		switch parent.Status {
		case FieldBegin:
			parent.Code += bracketCode(top.Code)
		case FieldSeparate:
			parent.Result += top.raw
		}
		fr.stack = append(fr.stack[:idx], fr.stack[idx+1:]...)

	case fieldKindSimple:
		parent := fr.openTop()
		if parent != nil {
			switch parent.Status {
			case FieldBegin:
				parent.Code += bracketCode(n.instr)
			case FieldSeparate:
				parent.Result += n.nodeXML
			}
			return nil
		}
		fr.stack = append(fr.stack, &Field{
			Code:      n.instr,
			Result:    n.inner,
			XMLBefore: fr.takePendingPrefix(),
			Status:    FieldEnd,
			raw:       n.nodeXML,
		})
	}
	return nil
}

func (fr *fieldResolver) indexOf(f *Field) int {
	for i := range fr.stack {
		if fr.stack[i] == f {
			return i
		}
	}
	return -1
}

// resolveFields resolves the field forest of a markup string, returning the
// ordered top-level records and the trailing opaque markup after the last
// field.
func resolveFields(markup string) ([]Field, string, error) {
	nodes, tail := splitFieldBoundaries(markup)
	fr := &fieldResolver{maxDepth: GetGlobalConfig().MaxFieldDepth}
	for i := range nodes {
		if err := fr.process(&nodes[i]); err != nil {
			return nil, "", err
		}
	}
	if open := fr.openTop(); open != nil {
		return nil, "", NewStructuralError("resolve fields", "field begin without end", open.Code)
	}
	fields := make([]Field, len(fr.stack))
	for i, f := range fr.stack {
		fields[i] = *f
	}
	GetLogger().Debug("resolved %d top-level fields from %d boundary markers", len(fields), len(nodes))
	return fields, fr.takePendingPrefix() + tail, nil
}

// ResolveFields reconstructs the top-level fields of a markup string,
// supporting arbitrary nesting depth with a linear scan and an explicit
// stack. Each record carries the opaque markup that preceded it.
func ResolveFields(markup string) ([]Field, error) {
	fields, _, err := resolveFields(markup)
	return fields, err
}

// RewriteFields replaces each top-level field with transform(code, result)
// and passes all other markup through unchanged.
func RewriteFields(markup string, transform FieldTransform) (string, error) {
	fields, trailing, err := resolveFields(markup)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := range fields {
		b.WriteString(fields[i].XMLBefore)
		b.WriteString(transform(fields[i].Code, fields[i].Result))
	}
	b.WriteString(trailing)
	return b.String(), nil
}
