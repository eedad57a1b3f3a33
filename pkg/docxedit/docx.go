package docxedit

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Package holds the members of one DOCX container. Untouched parts are
// written back byte-for-byte; only parts replaced through SetPart change.
type Package struct {
	parts map[string][]byte
	order []string
}

// contentTypes mirrors the [Content_Types].xml manifest.
type contentTypes struct {
	XMLName   xml.Name              `xml:"Types"`
	Overrides []contentTypeOverride `xml:"Override"`
}

type contentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Relationship represents a relationship in the DOCX package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// ReadPackage reads a DOCX container from a reader.
func ReadPackage(r io.ReaderAt, size int64) (*Package, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, NewDocumentError("read", "", fmt.Errorf("failed to read zip file: %w", err))
	}

	p := &Package{parts: make(map[string][]byte)}
	for _, file := range zipReader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, NewDocumentError("read", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, NewDocumentError("read", file.Name, err)
		}
		p.parts[file.Name] = content
		p.order = append(p.order, file.Name)
	}

	if _, ok := p.parts["word/document.xml"]; !ok {
		return nil, NewDocumentError("read", "word/document.xml", fmt.Errorf("not a valid DOCX file: missing main document part"))
	}

	return p, nil
}

// OpenPackage reads a DOCX container from a file path.
func OpenPackage(path string) (*Package, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}
	return ReadPackage(bytes.NewReader(content), int64(len(content)))
}

// Part returns the content of one package member.
func (p *Package) Part(name string) ([]byte, error) {
	content, ok := p.parts[name]
	if !ok {
		return nil, NewDocumentError("get part", name, fmt.Errorf("part not found"))
	}
	return content, nil
}

// SetPart replaces (or adds) one package member.
func (p *Package) SetPart(name string, content []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = content
}

// ListParts returns the names of all package members in container order.
func (p *Package) ListParts() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// DocumentParts enumerates the editable WordprocessingML parts (main body,
// headers, footers, footnotes, endnotes) through the [Content_Types].xml
// manifest, falling back to well-known names when the manifest is absent.
func (p *Package) DocumentParts() []string {
	manifest, ok := p.parts["[Content_Types].xml"]
	if !ok {
		return p.documentPartsByName()
	}
	var types contentTypes
	if err := xml.Unmarshal(manifest, &types); err != nil {
		return p.documentPartsByName()
	}

	var names []string
	for _, o := range types.Overrides {
		if !editableContentType(o.ContentType) {
			continue
		}
		name := strings.TrimPrefix(o.PartName, "/")
		if _, exists := p.parts[name]; exists {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func editableContentType(ct string) bool {
	switch {
	case strings.HasSuffix(ct, ".document.main+xml"),
		strings.HasSuffix(ct, ".header+xml"),
		strings.HasSuffix(ct, ".footer+xml"),
		strings.HasSuffix(ct, ".footnotes+xml"),
		strings.HasSuffix(ct, ".endnotes+xml"):
		return true
	}
	return false
}

func (p *Package) documentPartsByName() []string {
	var names []string
	for name := range p.parts {
		if name == "word/document.xml" ||
			(strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml")) ||
			(strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml")) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Relationships retrieves the relationships of a given part.
// e.g., "word/document.xml" -> "word/_rels/document.xml.rels"
func (p *Package) Relationships(partName string) ([]Relationship, error) {
	dir := ""
	base := partName
	if idx := strings.LastIndex(partName, "/"); idx != -1 {
		dir = partName[:idx]
		base = partName[idx+1:]
	}

	relPath := fmt.Sprintf("%s/_rels/%s.rels", dir, base)
	if dir == "" {
		relPath = fmt.Sprintf("_rels/%s.rels", base)
	}

	content, ok := p.parts[relPath]
	if !ok {
		// Missing relationships file is not an error, just return empty
		return []Relationship{}, nil
	}

	var rels Relationships
	if err := xml.Unmarshal(content, &rels); err != nil {
		return nil, NewDocumentError("parse relationships", relPath, err)
	}

	return rels.Relationship, nil
}

// TransformParts applies fn to every editable document part, replacing each
// part's content with the function's output. The first error aborts with the
// package contents untouched.
func (p *Package) TransformParts(fn func(name, markup string) (string, error)) error {
	updated := make(map[string][]byte)
	for _, name := range p.DocumentParts() {
		out, err := fn(name, string(p.parts[name]))
		if err != nil {
			return WithContext(err, "transform part", map[string]interface{}{"part": name})
		}
		updated[name] = []byte(out)
	}
	for name, content := range updated {
		p.parts[name] = content
	}
	return nil
}

// Save writes the container to w, preserving member order.
func (p *Package) Save(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range p.order {
		f, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return NewDocumentError("save", name, err)
		}
		if _, err := f.Write(p.parts[name]); err != nil {
			zw.Close()
			return NewDocumentError("save", name, err)
		}
	}
	return zw.Close()
}

// SaveFile writes the container to a file path.
func (p *Package) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return NewDocumentError("save", path, err)
	}
	return nil
}
