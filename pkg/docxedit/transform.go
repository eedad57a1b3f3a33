package docxedit

import (
	"regexp"
)

// TransformOptions configures the decompose → scrub/merge → replace →
// reconstruct pipeline.
type TransformOptions struct {
	// Merge controls run coalescing. Merging precedes replacement so that
	// patterns match across what were artificially fragmented runs.
	Merge MergeOptions
	// Scrub removes fixed cosmetic markup before decomposition.
	Scrub bool
	// Decompose controls decomposition corner cases.
	Decompose DecomposeOptions
}

// Transform runs the full pipeline over one document part: the markup is
// decomposed into runs, merged, pattern-replaced, and reconstructed. The
// input string is never mutated; on error the caller's prior state is
// untouched. A nil pattern skips the replacement stage.
func Transform(markup string, pattern *regexp.Regexp, repl interface{}, opts TransformOptions) (string, error) {
	logger := GetLogger()
	logger.DebugMarkup("transform input", markup)
	if opts.Scrub || GetGlobalConfig().ScrubByDefault {
		markup = Scrub(markup)
	}
	runs := DecomposeWithOptions(markup, opts.Decompose)
	logger.Debug("decomposed into %d runs", len(runs))
	runs, err := MergeRuns(runs, opts.Merge)
	if err != nil {
		return "", err
	}
	logger.Debug("merged to %d runs", len(runs))
	if pattern == nil {
		return Serialize(runs), nil
	}
	out, err := ReplaceAll(runs, pattern, repl, nil)
	if err != nil {
		return "", err
	}
	logger.DebugMarkup("transform output", out)
	return out, nil
}

// MergeOnly decomposes, merges, and reconstructs without replacement.
func MergeOnly(markup string, opts MergeOptions) (string, error) {
	runs, err := MergeRuns(Decompose(markup), opts)
	if err != nil {
		return "", err
	}
	return Serialize(runs), nil
}

// DecomposeOnly exposes the run/text sequence directly, for callers that
// build their own replacement context from it.
func DecomposeOnly(markup string) []Run {
	return Decompose(markup)
}
