package utils

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"single space", "my file.txt", "my_file.txt"},
		{"whitespace run", "a  \t b.txt", "a_b.txt"},
		{"leading and trailing", " a b ", "_a_b_"},
		{"unicode space", "a\u00a0b", "a_b"},
		{"directory part", "../../etc/passwd", "passwd"},
		{"windows path", `C:\Users\me\notes.txt`, "notes.txt"},
		{"dots inside", "archive..tar.gz", "archive..tar.gz"},
		{"empty", "", "file"},
		{"dot", ".", "file"},
		{"parent", "..", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.expected {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStoredName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	got := StoredName(now, "my file.txt")
	if got != "1700000000123-my_file.txt" {
		t.Fatalf("StoredName = %q", got)
	}
	if strings.Contains(got, " ") {
		t.Errorf("stored name %q contains a space", got)
	}

	re := regexp.MustCompile(`^\d+-report\.pdf$`)
	if name := StoredName(time.Now(), "report.pdf"); !re.MatchString(name) {
		t.Errorf("StoredName = %q, want match %s", name, re)
	}
}
