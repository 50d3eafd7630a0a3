package state

import (
	"fmt"
	"strings"
)

// pathSpecial is the set of bytes that carry meaning in gjson and sjson
// path syntax. Literal segments escape all of them so that state keys
// never trigger queries, wildcards, or modifiers.
const pathSpecial = `\.|#@*?:!~`

// splitKey parses a dot-path key into its unescaped segments. A
// backslash escapes the next byte, so "a\.b" is the single segment
// "a.b" and "a\\b" contains a literal backslash.
func splitKey(key string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	var segs []string
	var cur strings.Builder
	escaped := false
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '.':
			if cur.Len() == 0 {
				return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidKey, key)
			}
			segs = append(segs, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if escaped {
		return nil, fmt.Errorf("%w: trailing escape in %q", ErrInvalidKey, key)
	}
	if cur.Len() == 0 {
		return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidKey, key)
	}
	return append(segs, cur.String()), nil
}

// joinKey renders segments back into key syntax, escaping dots and
// backslashes. joinKey(splitKey(k)) is the canonical form of k.
func joinKey(segs []string) string {
	var b strings.Builder
	for i, seg := range segs {
		if i > 0 {
			b.WriteByte('.')
		}
		for j := 0; j < len(seg); j++ {
			if seg[j] == '.' || seg[j] == '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(seg[j])
		}
	}
	return b.String()
}

// canonicalKey parses and re-renders a key so that equivalent spellings
// compare equal.
func canonicalKey(key string) (string, []string, error) {
	segs, err := splitKey(key)
	if err != nil {
		return "", nil, err
	}
	return joinKey(segs), segs, nil
}

// escapeSegment escapes one literal segment for use in a path
// expression.
func escapeSegment(seg string) string {
	if !strings.ContainsAny(seg, pathSpecial) {
		return seg
	}
	var b strings.Builder
	for j := 0; j < len(seg); j++ {
		if strings.IndexByte(pathSpecial, seg[j]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(seg[j])
	}
	return b.String()
}

// getPath builds a gjson read path for the segments.
func getPath(segs []string) string {
	parts := make([]string, len(segs))
	for i, seg := range segs {
		parts[i] = escapeSegment(seg)
	}
	return strings.Join(parts, ".")
}

// setPath builds an sjson write path. Every segment carries the ':'
// object-key marker so that numeric segments address object members
// instead of array indexes.
func setPath(segs []string) string {
	parts := make([]string, len(segs))
	for i, seg := range segs {
		parts[i] = ":" + escapeSegment(seg)
	}
	return strings.Join(parts, ".")
}

// isParentKey reports whether child equals parent or lies beneath it.
// Both keys must be in canonical form; escaped dots never produce a
// false segment boundary because the escaping backslash breaks the
// prefix match.
func isParentKey(parent, child string) bool {
	if parent == child {
		return true
	}
	return strings.HasPrefix(child, parent+".")
}
