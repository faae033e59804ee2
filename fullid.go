// fullid.go - app identity type and its validation rules

package main

import "strings"

// FullID identifies an app as author-id.app-id, e.g. "some-user.some-app".
// Used as the key for rom/data directories and as the wire identifier
// exchanged during the multiplayer handshake.
type FullID struct {
	Author string
	App    string
}

// String renders the canonical "author.app" form.
func (id FullID) String() string {
	return id.Author + "." + id.App
}

// ParseFullID splits and validates a dotted full-id string. Validation
// matters beyond cosmetics: without it, a malformed id like "../../.."
// could be used to escape the app's rom/data directory sandbox.
func ParseFullID(s string) (FullID, bool) {
	if !ValidFullID(s) {
		return FullID{}, false
	}
	dot := strings.IndexByte(s, '.')
	return FullID{Author: s[:dot], App: s[dot+1:]}, true
}

// ValidFullID reports whether s is a well-formed "author.app" id: exactly
// one dot, both parts non-empty, lowercase ASCII alphanumeric plus
// internal (non-leading, non-trailing, non-doubled) hyphens only.
func ValidFullID(s string) bool {
	b := []byte(s)
	n, ok := validIDPart(b)
	if !ok {
		return false
	}
	b = b[n:]
	if len(b) == 0 || b[0] != '.' {
		return false
	}
	b = b[1:]
	n, ok = validIDPart(b)
	if !ok {
		return false
	}
	b = b[n:]
	// all bytes must be consumed: anything left means a second dot.
	return len(b) == 0
}

// validIDPart consumes one id part (up to but not including a '.' or end
// of input) and reports how many bytes it consumed and whether the part
// is valid. On invalid input the consumed count is meaningless.
func validIDPart(b []byte) (int, bool) {
	alphaFound := false
	prevHyphen := false
	i := 0
	for ; i < len(b); i++ {
		c := b[i]
		if c == '.' {
			break
		}
		if c == '-' {
			if !alphaFound {
				return i, false
			}
			if prevHyphen {
				return i, false
			}
			prevHyphen = true
			continue
		}
		prevHyphen = false
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		if !isLower && !isDigit {
			return i, false
		}
		alphaFound = true
	}
	return i, alphaFound && !prevHyphen
}
