package docxedit

import (
	"regexp"
	"strings"
)

// ReplaceFunc produces the substitute markup or text for one pattern match.
// It receives the matched substring, the still-pending opaque markup prefix
// of the enclosing text node (handed over at most once, on the first emitted
// fragment of the node; empty afterwards), and the caller-supplied context.
// A return value starting with '<' is spliced into the output verbatim; any
// other value is treated as literal text.
type ReplaceFunc func(match, xmlBefore string, ctx *ReplaceContext) string

// ReplaceContext carries caller-supplied context into replacement callbacks.
type ReplaceContext struct {
	// Run is the run enclosing the text node under replacement. Callbacks
	// use it to copy formatting properties onto markup they produce.
	Run *Run
	// Data is an opaque bag for the caller.
	Data map[string]interface{}
}

// emitState tracks whether the emission point is between complete runs or
// inside a run interior left open by spliced markup. Fresh <w:r> wrappers
// are only legal at run level.
type emitState int

const (
	emitRunLevel emitState = iota
	emitInline
)

var (
	runOpenPattern  = regexp.MustCompile(`<w:r(?: [^>]*)?>`)
	runClosePattern = regexp.MustCompile(`</w:r>`)
)

// stateAfter classifies the emission point after a raw markup fragment has
// been spliced: a trailing unbalanced run-open leaves the point inside a run
// interior, a trailing run-close returns it to run level, and a fragment
// touching neither keeps the current state.
func stateAfter(fragment string, current emitState) emitState {
	opens := runOpenPattern.FindAllStringIndex(fragment, -1)
	closes := runClosePattern.FindAllStringIndex(fragment, -1)
	if len(opens) == 0 && len(closes) == 0 {
		return current
	}
	if len(closes) == 0 {
		return emitInline
	}
	if len(opens) == 0 {
		return emitRunLevel
	}
	if opens[len(opens)-1][0] > closes[len(closes)-1][0] {
		return emitInline
	}
	return emitRunLevel
}

// emitter threads the replacement algorithm's state across the text nodes of
// one run: the output buffer, the pending literal accumulator, the owed
// opaque prefix, and the explicit emission-state enum.
type emitter struct {
	out     strings.Builder
	pending strings.Builder
	owed    string
	props   string
	state   emitState
}

func (e *emitter) takePrefix() string {
	p := e.owed
	e.owed = ""
	return p
}

// flushLiteral emits the pending literal accumulator as a structured node:
// a fresh single-text run at run level, a bare text leaf inside a run
// interior. The owed prefix is consumed immediately before the leaf.
func (e *emitter) flushLiteral() {
	if e.pending.Len() == 0 {
		return
	}
	literal := e.pending.String()
	e.pending.Reset()
	if e.state == emitRunLevel {
		e.out.WriteString("<w:r>")
		if e.props != "" {
			e.out.WriteString(e.props)
		}
		e.out.WriteString(e.takePrefix())
		writeTextLeaf(&e.out, literal)
		e.out.WriteString("</w:r>")
	} else {
		e.out.WriteString(e.takePrefix())
		writeTextLeaf(&e.out, literal)
	}
}

func (e *emitter) spliceRaw(fragment string) {
	e.flushLiteral()
	e.out.WriteString(fragment)
	e.state = stateAfter(fragment, e.state)
}

// finishNode flushes the pending literal and emits any still-owed opaque
// prefix bare, so that opaque markup survives even an all-matched node whose
// replacements produced nothing.
func (e *emitter) finishNode() {
	e.flushLiteral()
	if e.owed != "" {
		e.out.WriteString(e.takePrefix())
	}
}

// replaceNode runs the split/reassemble algorithm for one text node on a
// shared emitter. The node's literal is split into alternating unmatched and
// matched fragments; unmatched fragments force structural emission, literal
// replacements accumulate, and callback-produced markup is spliced verbatim.
func replaceNode(e *emitter, node *Text, pattern *regexp.Regexp, literal string, fn ReplaceFunc, ctx *ReplaceContext) {
	e.owed = node.XMLBefore
	prev := 0
	for _, m := range pattern.FindAllStringIndex(node.Text, -1) {
		if unmatched := node.Text[prev:m[0]]; unmatched != "" {
			e.pending.WriteString(unmatched)
			e.flushLiteral()
		}
		match := node.Text[m[0]:m[1]]
		if fn != nil {
			result := fn(match, e.takePrefix(), ctx)
			if strings.HasPrefix(result, "<") {
				e.spliceRaw(result)
			} else {
				e.pending.WriteString(result)
			}
		} else {
			e.pending.WriteString(literal)
		}
		prev = m[1]
	}
	if unmatched := node.Text[prev:]; unmatched != "" {
		e.pending.WriteString(unmatched)
	}
	e.finishNode()
}

// compileReplacement normalizes the replacement argument: a plain string is
// a literal, a ReplaceFunc (or compatible function) is a callback. Anything
// else is a ConfigError.
func compileReplacement(repl interface{}) (string, ReplaceFunc, error) {
	switch v := repl.(type) {
	case string:
		return v, nil, nil
	case ReplaceFunc:
		return "", v, nil
	case func(match, xmlBefore string, ctx *ReplaceContext) string:
		return "", ReplaceFunc(v), nil
	default:
		return "", nil, NewConfigError("replacement", "", "replacement must be a string or a ReplaceFunc")
	}
}

// checkPattern rejects patterns with capturing groups, which would break the
// unmatched/matched split.
func checkPattern(pattern *regexp.Regexp) error {
	if pattern == nil {
		return NewConfigError("pattern", "", "pattern must not be nil")
	}
	if pattern.NumSubexp() > 0 {
		return NewConfigError("pattern", pattern.String(), "pattern must not contain capturing groups")
	}
	return nil
}

// ReplaceInNode applies pattern-based replacement to a single text node and
// returns the markup fragment that replaces it. ctx supplies the enclosing
// run, whose properties are copied onto every freshly emitted run. For a
// pattern with no matches in a node with a non-empty literal, the fragment is
// byte-identical to serializing the node inside a single-text run; a node
// with an empty literal contributes only its opaque prefix, emitted bare.
func ReplaceInNode(node Text, pattern *regexp.Regexp, repl interface{}, ctx *ReplaceContext) (string, error) {
	if err := checkPattern(pattern); err != nil {
		return "", err
	}
	literal, fn, err := compileReplacement(repl)
	if err != nil {
		return "", err
	}
	if ctx == nil {
		ctx = &ReplaceContext{}
	}
	e := &emitter{state: emitRunLevel}
	if ctx.Run != nil {
		e.props = ctx.Run.Properties
	}
	replaceNode(e, &node, pattern, literal, fn, ctx)
	return e.out.String(), nil
}

// ReplaceAll applies pattern-based replacement across a run sequence and
// returns the reconstructed markup. Runs whose text leaves contain no match
// are serialized untouched, so with zero matches anywhere the output equals
// Serialize(runs) byte-for-byte.
func ReplaceAll(runs []Run, pattern *regexp.Regexp, repl interface{}, data map[string]interface{}) (string, error) {
	if err := checkPattern(pattern); err != nil {
		return "", err
	}
	literal, fn, err := compileReplacement(repl)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	matched := 0
	for i := range runs {
		r := &runs[i]
		if !runHasMatch(r, pattern) {
			serializeRun(&out, r)
			continue
		}
		matched++
		out.WriteString(r.XMLBefore)
		ctx := &ReplaceContext{Run: r, Data: data}
		e := &emitter{props: r.Properties, state: emitRunLevel}
		for j := range r.Texts {
			replaceNode(e, &r.Texts[j], pattern, literal, fn, ctx)
		}
		out.WriteString(e.out.String())
	}
	GetLogger().Debug("pattern %s matched in %d of %d runs", pattern, matched, len(runs))
	return out.String(), nil
}

func runHasMatch(r *Run, pattern *regexp.Regexp) bool {
	for i := range r.Texts {
		if pattern.MatchString(r.Texts[i].Text) {
			return true
		}
	}
	return false
}
