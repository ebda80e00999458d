package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/datacite"
	"github.com/ecmwf-copernicus/copernicus-publication/internal/mapper"
	"github.com/ecmwf-copernicus/copernicus-publication/internal/pdfmeta"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <metadata.xml> <article.pdf>",
	Short: "Check that an article PDF carries the metadata document's DOI",
	Long: `Check that the DOI printed in an article PDF matches the identifier
in the publication's metadata document. Journals print the DOI on the
first page; the first pages of the PDF are scanned for a DOI pattern.`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	doc, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitError, "reading metadata document: %v", err)
	}

	res, _, err := mapper.Parse(doc, datacite.StateDraft)
	if err != nil {
		exitWithError(ExitValidationError, "%v", err)
	}
	wantDOI := res.DOI()
	if wantDOI == "" {
		exitWithError(ExitValidationError, "metadata document carries no DOI")
	}

	gotDOI, err := pdfmeta.ExtractDOI(args[1])
	if err != nil {
		exitWithError(ExitError, "reading PDF: %v", err)
	}

	match := gotDOI == wantDOI

	if humanOutput {
		fmt.Printf("Metadata DOI: %s\n", wantDOI)
		if gotDOI == "" {
			fmt.Println("PDF DOI:      (none found)")
		} else {
			fmt.Printf("PDF DOI:      %s\n", gotDOI)
		}
		if match {
			fmt.Println("Match")
		} else {
			fmt.Println("Mismatch")
		}
	} else {
		outputJSON(struct {
			MetadataDOI string `json:"metadata_doi"`
			PDFDOI      string `json:"pdf_doi,omitempty"`
			Match       bool   `json:"match"`
		}{MetadataDOI: wantDOI, PDFDOI: gotDOI, Match: match})
	}

	if !match {
		os.Exit(ExitValidationError)
	}
	return nil
}
