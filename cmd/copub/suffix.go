package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/datacite"
)

var suffixPrefix string

var suffixCmd = &cobra.Command{
	Use:   "suffix",
	Short: "Generate a DOI suffix",
	Long: `Generate a random DOI suffix in the house format
(9 lower-case alphanumeric characters with a dash, e.g. "ab1c-2d3ef").

With --prefix the full DOI is printed as well.`,
	Args: cobra.NoArgs,
	RunE: runSuffix,
}

func init() {
	suffixCmd.Flags().StringVar(&suffixPrefix, "prefix", "", "DOI prefix to combine with the suffix")

	rootCmd.AddCommand(suffixCmd)
}

func runSuffix(cmd *cobra.Command, args []string) error {
	prefix := suffixPrefix
	if prefix == "" {
		prefix = mustLoadConfig().Prefix
	}

	suffix := datacite.GenerateSuffix()

	if humanOutput {
		if prefix != "" {
			fmt.Println(datacite.JoinDOI(prefix, suffix))
		} else {
			fmt.Println(suffix)
		}
		return nil
	}

	resp := struct {
		Suffix string `json:"suffix"`
		DOI    string `json:"doi,omitempty"`
	}{Suffix: suffix}
	if prefix != "" {
		resp.DOI = datacite.JoinDOI(prefix, suffix)
	}
	return outputJSON(resp)
}
