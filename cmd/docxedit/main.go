// Command docxedit performs structure-preserving edits on DOCX documents:
// text extraction, pattern replacement across fragmented runs, run
// normalization, field resolution, and bookmark erasure.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/benjaminschreck/go-docxedit/pkg/docxedit"
)

const version = "0.1.0"

// CLI defines the command-line interface for docxedit.
var CLI struct {
	LogLevel string `name:"log-level" help:"Log verbosity (debug, info, warn, error, off)"`

	Extract   ExtractCmd   `cmd:"" help:"Extract plain text from a document"`
	Replace   ReplaceCmd   `cmd:"" help:"Replace text across fragmented runs"`
	Merge     MergeCmd     `cmd:"" help:"Normalize fragmented runs"`
	Fields    FieldsCmd    `cmd:"" help:"List resolved field codes and results"`
	Bookmarks BookmarksCmd `cmd:"" help:"Erase bookmarks by name"`
	Inspect   InspectCmd   `cmd:"" help:"Summarize document structure"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// ExtractCmd prints the visible text of every editable part.
type ExtractCmd struct {
	Input string `arg:"" help:"Input .docx file" type:"existingfile"`
	Part  string `help:"Restrict to one part (e.g. word/document.xml)"`
}

func (c *ExtractCmd) Run(ctx *kong.Context) error {
	pkg, err := docxedit.OpenPackage(c.Input)
	if err != nil {
		return err
	}
	for _, name := range selectParts(pkg, c.Part) {
		content, err := pkg.Part(name)
		if err != nil {
			return err
		}
		text := docxedit.ExtractText(string(content))
		if text == "" {
			continue
		}
		fmt.Fprintf(ctx.Stdout, "== %s ==\n%s\n", name, text)
	}
	return nil
}

// ReplaceCmd applies pattern replacement to every editable part, either from
// a rules file or from --pattern/--with flags.
type ReplaceCmd struct {
	Input   string `arg:"" help:"Input .docx file" type:"existingfile"`
	Output  string `short:"o" required:"" help:"Output .docx file"`
	Rules   string `help:"YAML rules file" type:"existingfile"`
	Pattern string `help:"Literal text to replace (alternative to --rules)"`
	With    string `help:"Replacement text for --pattern"`
	Regex   bool   `help:"Treat --pattern as a regular expression"`
	NoCaps  bool   `name:"no-caps" help:"Strip all-caps formatting while merging"`
	Scrub   bool   `help:"Remove cosmetic markup before merging"`
	Track   bool   `help:"Record replacements as tracked changes"`
	Author  string `default:"docxedit" help:"Author for tracked changes"`
}

func (c *ReplaceCmd) Run(ctx *kong.Context) error {
	rules, err := c.buildRules()
	if err != nil {
		return err
	}
	compiled, err := rules.Compile()
	if err != nil {
		return err
	}

	pkg, err := docxedit.OpenPackage(c.Input)
	if err != nil {
		return err
	}

	rc := docxedit.NewRevisionCounter(1)
	meta := docxedit.ChangeMeta{Author: c.Author, Date: time.Now()}
	err = pkg.TransformParts(func(name, markup string) (string, error) {
		docxedit.Debug("editing part %s", name)
		return compiled.Apply(markup, rc, meta)
	})
	if err != nil {
		return err
	}
	return pkg.SaveFile(c.Output)
}

func (c *ReplaceCmd) buildRules() (*docxedit.Rules, error) {
	if c.Rules != "" {
		return docxedit.LoadRules(c.Rules)
	}
	if c.Pattern == "" {
		return nil, fmt.Errorf("either --rules or --pattern is required")
	}
	rules := &docxedit.Rules{
		Replacements: []docxedit.ReplacementRule{
			{Pattern: c.Pattern, Replace: c.With, Regex: c.Regex},
		},
		Scrub: c.Scrub,
	}
	if c.NoCaps {
		rules.MergeOptions = append(rules.MergeOptions, "no-caps")
	}
	if c.Track {
		rules.TrackChanges = &docxedit.TrackRules{Author: c.Author}
	}
	return rules, nil
}

// MergeCmd normalizes fragmented runs without replacing anything.
type MergeCmd struct {
	Input  string `arg:"" help:"Input .docx file" type:"existingfile"`
	Output string `short:"o" required:"" help:"Output .docx file"`
	NoCaps bool   `name:"no-caps" help:"Strip all-caps formatting while merging"`
	Scrub  bool   `help:"Remove cosmetic markup before merging"`
}

func (c *MergeCmd) Run(ctx *kong.Context) error {
	var names []string
	if c.NoCaps {
		names = append(names, "no-caps")
	}
	opts, err := docxedit.ParseMergeOptions(names...)
	if err != nil {
		return err
	}

	pkg, err := docxedit.OpenPackage(c.Input)
	if err != nil {
		return err
	}
	err = pkg.TransformParts(func(name, markup string) (string, error) {
		if c.Scrub {
			markup = docxedit.Scrub(markup)
		}
		return docxedit.MergeOnly(markup, opts)
	})
	if err != nil {
		return err
	}
	return pkg.SaveFile(c.Output)
}

// FieldsCmd lists the top-level fields of every editable part.
type FieldsCmd struct {
	Input string `arg:"" help:"Input .docx file" type:"existingfile"`
	Part  string `help:"Restrict to one part"`
}

func (c *FieldsCmd) Run(ctx *kong.Context) error {
	pkg, err := docxedit.OpenPackage(c.Input)
	if err != nil {
		return err
	}
	for _, name := range selectParts(pkg, c.Part) {
		content, err := pkg.Part(name)
		if err != nil {
			return err
		}
		fields, err := docxedit.ResolveFields(string(content))
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			continue
		}
		fmt.Fprintf(ctx.Stdout, "== %s ==\n", name)
		for i, f := range fields {
			fmt.Fprintf(ctx.Stdout, "  [%d] code: %s\n      result: %s\n", i+1, strings.TrimSpace(f.Code), docxedit.ExtractText(f.Result))
		}
	}
	return nil
}

// BookmarksCmd erases bookmarks by name.
type BookmarksCmd struct {
	Input        string   `arg:"" help:"Input .docx file" type:"existingfile"`
	Output       string   `short:"o" required:"" help:"Output .docx file"`
	EraseFull    []string `name:"erase-full" help:"Bookmarks to erase with their contents"`
	EraseMarkers []string `name:"erase-markers" help:"Bookmarks whose markers alone are erased"`
}

func (c *BookmarksCmd) Run(ctx *kong.Context) error {
	if len(c.EraseFull) == 0 && len(c.EraseMarkers) == 0 {
		return fmt.Errorf("nothing to erase: pass --erase-full or --erase-markers")
	}
	var fullRange, markupOnly docxedit.NamePredicate
	if len(c.EraseFull) > 0 {
		fullRange = docxedit.Names(c.EraseFull...)
	}
	if len(c.EraseMarkers) > 0 {
		markupOnly = docxedit.Names(c.EraseMarkers...)
	}

	pkg, err := docxedit.OpenPackage(c.Input)
	if err != nil {
		return err
	}
	err = pkg.TransformParts(func(name, markup string) (string, error) {
		return docxedit.SuppressBookmarks(markup, fullRange, markupOnly)
	})
	if err != nil {
		return err
	}
	return pkg.SaveFile(c.Output)
}

// InspectCmd prints a structure summary per editable part.
type InspectCmd struct {
	Input string `arg:"" help:"Input .docx file" type:"existingfile"`
}

func (c *InspectCmd) Run(ctx *kong.Context) error {
	pkg, err := docxedit.OpenPackage(c.Input)
	if err != nil {
		return err
	}
	for _, name := range pkg.DocumentParts() {
		content, err := pkg.Part(name)
		if err != nil {
			return err
		}
		if err := docxedit.ValidatePart(string(content)); err != nil {
			fmt.Fprintf(ctx.Stdout, "== %s ==\n  INVALID: %v\n", name, err)
			continue
		}
		report, err := docxedit.Inspect(string(content))
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.Stdout, "== %s ==\n  runs: %d  texts: %d  fieldChars: %d  simpleFields: %d  bookmarks: %d/%d  visible chars: %d\n",
			name, report.Runs, report.Texts, report.FieldChars, report.SimpleFields,
			report.BookmarkStarts, report.BookmarkEnds, len(report.VisibleText))
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Fprintf(ctx.Stdout, "docxedit version %s\n", version)
	return nil
}

func selectParts(pkg *docxedit.Package, only string) []string {
	if only != "" {
		return []string{only}
	}
	return pkg.DocumentParts()
}

func main() {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("docxedit"),
		kong.Description("Structure-preserving DOCX editing"),
		kong.UsageOnError(),
	)

	config := docxedit.ConfigFromEnvironment()
	if CLI.LogLevel != "" {
		config.LogLevel = CLI.LogLevel
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	docxedit.SetGlobalConfig(config)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
