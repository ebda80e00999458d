// Package pdfmeta extracts the DOI printed in an article PDF so it can
// be checked against the publication's metadata document.
package pdfmeta

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/datacite"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// maxScanPages bounds the per-page text scan; journals print the DOI on
// the first page, rarely later.
const maxScanPages = 3

// ExtractDOI scans the first pages of a PDF for a DOI and returns it in
// normalized (lower-case) form. An empty result means no DOI was found,
// which is not an error.
func ExtractDOI(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > maxScanPages {
		pages = maxScanPages
	}

	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if doi := findDOI(text); doi != "" {
			return doi, nil
		}
	}

	return "", nil
}

// findDOI returns the first valid DOI in text, normalized.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if datacite.IsValidDOI(match) {
			return datacite.NormalizeDOI(match)
		}
	}
	return ""
}
