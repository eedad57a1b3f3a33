package docxedit

import (
	"bytes"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rules is the YAML-configurable edit plan applied to a document package:
// replacement rules, merge options, and bookmark erasure policies.
type Rules struct {
	Replacements []ReplacementRule `yaml:"replacements"`
	MergeOptions []string          `yaml:"merge_options"`
	Scrub        bool              `yaml:"scrub"`
	Bookmarks    BookmarkRules     `yaml:"bookmarks"`
	TrackChanges *TrackRules       `yaml:"track_changes"`
}

// ReplacementRule maps one pattern to its replacement text. The pattern is a
// literal substring unless Regex is set.
type ReplacementRule struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
	Regex   bool   `yaml:"regex"`
}

// BookmarkRules names the bookmarks to erase. EraseFull removes markers and
// contents; EraseMarkers removes only the markers.
type BookmarkRules struct {
	EraseFull    []string `yaml:"erase_full"`
	EraseMarkers []string `yaml:"erase_markers"`
}

// TrackRules makes replacements tracked changes attributed to Author.
type TrackRules struct {
	Author string `yaml:"author"`
}

// CompiledRules is a Rules value with patterns compiled and options parsed,
// ready to drive the pipeline.
type CompiledRules struct {
	Replacements []CompiledReplacement
	Merge        MergeOptions
	Scrub        bool
	FullRange    NamePredicate
	MarkupOnly   NamePredicate
	Track        *TrackRules
}

// CompiledReplacement is one ready-to-apply replacement.
type CompiledReplacement struct {
	Pattern *regexp.Regexp
	Replace string
}

// ParseRules decodes a YAML rules document. Unknown keys are a ConfigError,
// reported before any markup is touched.
func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil {
		return nil, NewConfigError("rules", "", err.Error())
	}
	return &rules, nil
}

// LoadRules reads and decodes a YAML rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("load rules", path, err)
	}
	return ParseRules(data)
}

// Compile validates the rules and compiles their patterns.
func (r *Rules) Compile() (*CompiledRules, error) {
	merge, err := ParseMergeOptions(r.MergeOptions...)
	if err != nil {
		return nil, err
	}

	compiled := &CompiledRules{
		Merge: merge,
		Scrub: r.Scrub,
		Track: r.TrackChanges,
	}
	for _, rule := range r.Replacements {
		expr := rule.Pattern
		if !rule.Regex {
			expr = regexp.QuoteMeta(expr)
		}
		pattern, err := regexp.Compile(expr)
		if err != nil {
			return nil, NewConfigError("pattern", rule.Pattern, err.Error())
		}
		if pattern.NumSubexp() > 0 {
			return nil, NewConfigError("pattern", rule.Pattern, "pattern must not contain capturing groups")
		}
		compiled.Replacements = append(compiled.Replacements, CompiledReplacement{
			Pattern: pattern,
			Replace: rule.Replace,
		})
	}
	if len(r.Bookmarks.EraseFull) > 0 {
		compiled.FullRange = Names(r.Bookmarks.EraseFull...)
	}
	if len(r.Bookmarks.EraseMarkers) > 0 {
		compiled.MarkupOnly = Names(r.Bookmarks.EraseMarkers...)
	}
	return compiled, nil
}

// Apply runs the compiled rules over one document part and returns the
// edited markup.
func (c *CompiledRules) Apply(markup string, rc *RevisionCounter, meta ChangeMeta) (string, error) {
	out := markup
	var err error
	if c.FullRange != nil || c.MarkupOnly != nil {
		out, err = SuppressBookmarks(out, c.FullRange, c.MarkupOnly)
		if err != nil {
			return "", err
		}
	}
	opts := TransformOptions{Merge: c.Merge, Scrub: c.Scrub}
	if len(c.Replacements) == 0 {
		return Transform(out, nil, nil, opts)
	}
	for _, repl := range c.Replacements {
		var replacement interface{} = repl.Replace
		if c.Track != nil {
			replacement = TrackedReplacement(rc, meta, repl.Replace)
		}
		out, err = Transform(out, repl.Pattern, replacement, opts)
		if err != nil {
			return "", err
		}
	}
	return out, nil
}
