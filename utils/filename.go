package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// SanitizeName drops any directory part of an uploaded file name and replaces every
// run of whitespace with a single underscore.
func SanitizeName(original string) string {
	name := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		name = ""
	}

	var b strings.Builder
	inSpace := false
	for _, r := range name {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if r == 0 {
			continue
		}
		b.WriteRune(r)
	}

	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

// StoredName builds the on-disk name "<epoch millis>-<sanitized name>".
func StoredName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), SanitizeName(original))
}
