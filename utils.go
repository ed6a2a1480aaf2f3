package edgeserve

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ObjectKey derives the object key from a request path by dropping the leading slash.
func ObjectKey(path string) string {
	return strings.TrimPrefix(path, "/")
}

// HashID returns the portion of key before its first ".".
// "abc123.zip" and "abc123.tar.gz" both yield "abc123".
func HashID(key string) string {
	id, _, _ := strings.Cut(key, ".")
	return id
}

// IsValidKey reports whether key can be written as a stored object.
// It rejects:
//   - empty segments, which covers leading, trailing and doubled "/"
//   - "." and ".." segments
//   - backslashes, null bytes, control characters and DEL
//   - invalid UTF-8
//
// Reads do not use it: a blob store may hold keys that this package would
// never write.
func IsValidKey(key string) bool {
	if key == "" || !utf8.ValidString(key) {
		return false
	}

	if strings.ContainsRune(key, '\\') {
		return false
	}

	for seg := range strings.SplitSeq(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}

	for _, r := range key {
		if r < 0x20 || r == 0x7f || (unicode.IsSpace(r) && r != ' ') {
			return false
		}
	}

	return true
}
