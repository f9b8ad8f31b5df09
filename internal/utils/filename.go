package utils

import (
	"regexp"
	"strings"
)

// MarkdownExt is appended to export names that do not already end with it.
const MarkdownExt = ".md"

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename removes characters that are invalid in filenames or
// awkward in markdown vaults (slashes, colons, quotes, hashtags, brackets).
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	filename = strings.ReplaceAll(filename, "#", "")
	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")

	// leave room for the extension
	if len(filename) > 200 {
		filename = strings.TrimSpace(filename[:200])
	}

	if filename == "" {
		filename = "journal"
	}

	return filename
}

// ExportFilename sanitizes a user supplied export name and makes sure it ends with .md.
func ExportFilename(name string) string {
	if strings.HasSuffix(strings.ToLower(name), MarkdownExt) {
		name = name[:len(name)-len(MarkdownExt)]
	}
	return SanitizeFilename(name) + MarkdownExt
}
