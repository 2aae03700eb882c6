package collectionfs

import (
	"bytes"
	"strings"
)

// Parts is a path split into raw byte segments. No encoding is assumed.
// An empty Parts addresses the root directory.
type Parts [][]byte

// ParseParts splits a slash separated path. Empty and "." segments are dropped,
// so "a//b/./c/" and "/a/b/c" are equivalent. ".." is kept verbatim since the
// collection has no notion of a parent link.
func ParseParts(p string) Parts {
	fields := strings.Split(p, "/")
	parts := make(Parts, 0, len(fields))
	for _, f := range fields {
		if f == "" || f == "." {
			continue
		}
		parts = append(parts, []byte(f))
	}
	return parts
}

// String joins the segments with "/" and replaces invalid UTF-8 with U+FFFD.
// The root renders as "".
func (p Parts) String() string {
	return strings.ToValidUTF8(string(bytes.Join(p, []byte("/"))), "\uFFFD")
}

// Clone returns a deep copy.
func (p Parts) Clone() Parts {
	if p == nil {
		return nil
	}
	out := make(Parts, len(p))
	for i, seg := range p {
		out[i] = bytes.Clone(seg)
	}
	return out
}

// Join returns a new Parts with names appended; p is left untouched.
func (p Parts) Join(names ...[]byte) Parts {
	out := make(Parts, 0, len(p)+len(names))
	out = append(out, p...)
	return append(out, names...)
}

// Split returns the parent directory and final name. The root has no name.
func (p Parts) Split() (dir Parts, name []byte) {
	if len(p) == 0 {
		return nil, nil
	}
	return p[:len(p)-1], p[len(p)-1]
}

// IsRoot reports whether p addresses the root directory.
func (p Parts) IsRoot() bool {
	return len(p) == 0
}
