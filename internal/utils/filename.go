package utils

import (
	"path/filepath"
	"strings"
)

// SanitizeFilename strips any path component from an uploaded filename and
// keeps only ASCII letters, digits, dot, dash and underscore. Spaces become
// underscores. Returns "" when nothing safe remains.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
