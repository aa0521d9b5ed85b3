// Package sanitize normalizes user-supplied names into filesystem-safe and
// key-safe forms.
package sanitize

import (
	"path/filepath"
	"strings"
)

// FileName keeps ASCII letters, digits, '.' and '-'; every other character
// becomes '-' and runs of dashes collapse to one.
func FileName(name string) string {
	return collapse(mapRunes(name, func(r rune) rune {
		if isAlnum(r) || r == '.' || r == '-' {
			return r
		}
		return '-'
	}), '-')
}

// FolderName derives an extraction output-folder name from an uploaded file
// name: the extension is dropped and non-alphanumeric runs fold into a single
// dash, with no leading or trailing separator.
func FolderName(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	folded := collapse(mapRunes(base, func(r rune) rune {
		if isAlnum(r) {
			return r
		}
		return '-'
	}), '-')
	return strings.Trim(folded, "-")
}

// UserKey derives the preferences-document key from an email address:
// lowercased, with every non-alphanumeric character replaced by '_'.
// Distinct addresses can collide after folding; that is accepted.
func UserKey(email string) string {
	return mapRunes(strings.ToLower(email), func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	})
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func mapRunes(s string, f func(rune) rune) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(f(r))
	}
	return b.String()
}

func collapse(s string, sep byte) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev byte
	for i := 0; i < len(s); i++ {
		if s[i] == sep && prev == sep {
			continue
		}
		b.WriteByte(s[i])
		prev = s[i]
	}
	return b.String()
}
