// Package docxedit performs surgical, structure-preserving edits on the XML
// body of Word documents (DOCX). It extracts plain text, splices replacement
// text or markup at arbitrary match points, and normalizes artificially
// fragmented text runs so that textual search works reliably.
//
// The package never builds a full document tree. It maintains a flattened
// view that interleaves opaque markup spans (passed through verbatim) with
// structured leaves (text runs, run properties, field and bookmark
// boundaries), and reconstructs byte-faithful output after local edits.
//
// Basic Usage:
//
//	// Normalize fragmented runs and replace a placeholder
//	pattern := regexp.MustCompile(regexp.QuoteMeta("ACME Corp"))
//	out, err := docxedit.Transform(documentXML, pattern, "Initech Inc.", docxedit.TransformOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Extract plain text
//	text := docxedit.ExtractText(documentXML)
//
//	// Resolve field codes
//	fields, err := docxedit.ResolveFields(documentXML)
//
//	// Erase bookmarks by name
//	out, err := docxedit.SuppressBookmarks(documentXML, docxedit.Names("DraftWatermark"), nil)
//
// Replacement values may be plain strings or callbacks. A callback receives
// the matched substring, any not-yet-consumed opaque markup prefix, and a
// caller-supplied context; its return value is spliced verbatim when it
// starts with '<', and treated as literal text otherwise.
//
// The engine is single-threaded and purely synchronous. Independent document
// parts (body, headers, footers) may be processed in parallel by separate
// calls with no coordination, because each call owns its state exclusively.
package docxedit
