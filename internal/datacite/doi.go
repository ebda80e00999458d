package datacite

import (
	"math/rand"
	"strings"
)

// suffixPool is the character set used for generated DOI suffixes.
const suffixPool = "abcdefghijklmnopqrstuvwxyz0123456789"

// NormalizeDOI normalizes a DOI to a consistent format for comparison and
// storage. It removes common URL prefixes (https://doi.org/, DOI:) and
// converts to lowercase.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	return strings.ToLower(doi)
}

// SplitDOI splits a DOI into its prefix and suffix on the first slash.
// A DOI without a slash yields the whole value as prefix and an empty suffix.
func SplitDOI(doi string) (prefix, suffix string) {
	prefix, suffix, _ = strings.Cut(doi, "/")
	return prefix, suffix
}

// JoinDOI joins a prefix and suffix into a DOI value.
func JoinDOI(prefix, suffix string) string {
	return prefix + "/" + suffix
}

// IsValidDOI performs basic validation on a DOI value.
func IsValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	// Must start with 10. and have something after the /
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	if slashIdx == -1 || slashIdx >= len(doi)-1 {
		return false
	}
	return true
}

// GenerateSuffix produces a random nine-character DOI suffix with a dash
// at the fifth position, e.g. "ab3k-9xz2".
func GenerateSuffix() string {
	var b strings.Builder
	for i := 0; i < 9; i++ {
		if i == 4 {
			b.WriteByte('-')
			continue
		}
		b.WriteByte(suffixPool[rand.Intn(len(suffixPool))])
	}
	return b.String()
}
