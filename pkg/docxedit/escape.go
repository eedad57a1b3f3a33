package docxedit

import (
	"strconv"
	"strings"
)

// escapeText escapes the characters that are unsafe inside an XML text node.
// It deliberately does not touch whitespace: the engine must reproduce text
// content byte-for-byte, and encoding/xml's EscapeText rewrites newlines and
// tabs as character references.
func escapeText(s string) string {
	if !strings.ContainsAny(s, "&<>") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// escapeAttr escapes a value for interpolation into a double-quoted
// attribute: the text-node set plus the quote character itself.
func escapeAttr(s string) string {
	return strings.ReplaceAll(escapeText(s), `"`, "&quot;")
}

// unescapeText decodes the five predefined XML entities and numeric
// character references. Unrecognized references are kept verbatim.
func unescapeText(s string) string {
	amp := strings.IndexByte(s, '&')
	if amp < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 {
			b.WriteString(s[i:])
			break
		}
		ref := s[i+1 : i+semi]
		if decoded, ok := decodeEntity(ref); ok {
			b.WriteString(decoded)
		} else {
			b.WriteString(s[i : i+semi+1])
		}
		i += semi + 1
	}
	return b.String()
}

func decodeEntity(ref string) (string, bool) {
	switch ref {
	case "amp":
		return "&", true
	case "lt":
		return "<", true
	case "gt":
		return ">", true
	case "quot":
		return `"`, true
	case "apos":
		return "'", true
	}
	if len(ref) > 1 && ref[0] == '#' {
		num := ref[1:]
		base := 10
		if num[0] == 'x' || num[0] == 'X' {
			num = num[1:]
			base = 16
		}
		if code, err := strconv.ParseInt(num, base, 32); err == nil && code >= 0 {
			return string(rune(code)), true
		}
	}
	return "", false
}
