package docxedit

import (
	"regexp"
	"strings"
)

// MergeOptions controls run coalescing.
type MergeOptions struct {
	// NoCaps strips the all-caps run property and upper-cases the run's
	// literals before merge eligibility is checked, so runs on either side
	// of a caps boundary become mergeable.
	NoCaps bool
}

// ParseMergeOptions builds MergeOptions from option names, as supplied by a
// configuration surface. Unrecognized names are a ConfigError, reported
// before any markup is touched.
func ParseMergeOptions(names ...string) (MergeOptions, error) {
	var opts MergeOptions
	for _, name := range names {
		switch name {
		case "no-caps":
			opts.NoCaps = true
		default:
			return MergeOptions{}, NewConfigError(name, "", "unknown merge option")
		}
	}
	return opts, nil
}

// capsPattern matches the all-caps run property. The explicit-off form
// (w:val="false" / "0" / "none") is left alone: it changes style inheritance
// and its runs render lowercase anyway.
var capsPattern = regexp.MustCompile(`<w:caps(?: [^>]*)?/>|<w:caps(?: [^>]*)?></w:caps>`)

var capsOffPattern = regexp.MustCompile(`w:val="(?:false|0|none)"`)

// MergeRuns coalesces adjacent runs that share identical properties and have
// no intervening opaque markup. Visible text is preserved exactly; the
// operation is idempotent.
func MergeRuns(runs []Run, opts MergeOptions) ([]Run, error) {
	if opts.NoCaps {
		runs = stripCaps(runs)
	}
	var out []Run
	for i := range runs {
		r := runs[i]
		if len(out) > 0 && mergeable(&out[len(out)-1], &r) {
			if err := MergeInto(&out[len(out)-1], &r); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// mergeable reports whether src may be folded into dst: src carries no
// opaque markup and both runs share a byte-identical properties block.
func mergeable(dst *Run, src *Run) bool {
	return src.XMLBefore == "" && dst.Properties == src.Properties
}

// MergeInto folds src into dst in place. Calling it on incompatible runs is
// a StructuralError: MergeRuns checks eligibility first, so the error is
// only reachable through direct misuse, and it is reported rather than
// silently ignored because ignoring it would drop markup.
func MergeInto(dst *Run, src *Run) error {
	if src.XMLBefore != "" {
		return NewStructuralError("merge runs", "second run carries opaque markup", src.XMLBefore)
	}
	if dst.Properties != src.Properties {
		return NewStructuralError("merge runs", "runs have different properties", src.Properties)
	}
	for i := range src.Texts {
		t := src.Texts[i]
		if t.XMLBefore == "" && len(dst.Texts) > 0 {
			if err := mergeTexts(&dst.Texts[len(dst.Texts)-1], &t); err != nil {
				return err
			}
			continue
		}
		dst.Texts = append(dst.Texts, t)
	}
	return nil
}

// stripCaps removes the all-caps property from each run that carries it and
// upper-cases that run's literals. This is a normalization pass, explicitly
// separate from merge eligibility.
func stripCaps(runs []Run) []Run {
	out := make([]Run, len(runs))
	for i := range runs {
		out[i] = runs[i]
		loc := capsPattern.FindStringIndex(out[i].Properties)
		if loc == nil || capsOffPattern.MatchString(out[i].Properties[loc[0]:loc[1]]) {
			continue
		}
		out[i].Properties = removeEmptyPropertyBag(capsPattern.ReplaceAllString(out[i].Properties, ""))
		texts := make([]Text, len(out[i].Texts))
		for j := range out[i].Texts {
			texts[j] = out[i].Texts[j]
			texts[j].Text = strings.ToUpper(texts[j].Text)
		}
		out[i].Texts = texts
	}
	return out
}

// removeEmptyPropertyBag drops a properties block left empty by stripping.
func removeEmptyPropertyBag(properties string) string {
	if properties == "<w:rPr></w:rPr>" || properties == "<w:rPr/>" {
		return ""
	}
	return properties
}
