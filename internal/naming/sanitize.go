package naming

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxNameBytes is the file name limit shared by ext4, APFS and NTFS.
const maxNameBytes = 255

var invalidChars = regexp.MustCompile(`[\x00-\x1f"*/:<>?\\|\x7f]`)

// reservedNames cannot be used as a base name on Windows, with or
// without an extension.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true, "CLOCK$": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SanitizeName removes characters that are invalid in file names on
// Linux, macOS or Windows, trims trailing spaces and dots, and suffixes
// reserved device names with "_".
func SanitizeName(name string) string {
	name = invalidChars.ReplaceAllString(name, "")
	name = strings.TrimRight(strings.TrimSpace(name), " .")
	name = truncate(name, maxNameBytes)

	base, _, _ := strings.Cut(name, ".")
	if reservedNames[strings.ToUpper(base)] {
		if ext := filepath.Ext(name); ext != "" && base != name {
			return strings.TrimSuffix(name, ext) + "_" + ext
		}
		return name + "_"
	}
	return name
}

// SanitizedPath returns a sibling path of p with a sanitized base name.
func SanitizedPath(p string) string {
	return filepath.Join(filepath.Dir(p), SanitizeName(filepath.Base(p)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
