package constants

import "strings"

// CandidateExtensions holds the file extensions considered as invoice
// candidates when walking a decompressed archive.
var CandidateExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
