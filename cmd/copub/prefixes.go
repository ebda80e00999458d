package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var prefixesPassword string

var prefixesCmd = &cobra.Command{
	Use:   "prefixes",
	Short: "List the DOI prefixes assigned to the repository account",
	Args:  cobra.NoArgs,
	RunE:  runPrefixes,
}

func init() {
	// Load .env file if present (for DATACITE_PASSWORD)
	_ = godotenv.Load()

	prefixesCmd.Flags().StringVar(&prefixesPassword, "password", "", "DataCite account password (prefer DATACITE_PASSWORD)")

	rootCmd.AddCommand(prefixesCmd)
}

func runPrefixes(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	mustHaveRepositoryID(cfg)

	client := newRegistryClient(cfg, mustGetPassword(prefixesPassword))
	prefixes, err := client.ClientPrefixes(cmd.Context())
	if err != nil {
		exitWithError(ExitRegistryError, "listing prefixes: %v", err)
	}

	if humanOutput {
		for _, p := range prefixes {
			fmt.Println(p)
		}
		return nil
	}

	return outputJSON(struct {
		RepositoryID string   `json:"repository_id"`
		Prefixes     []string `json:"prefixes"`
	}{RepositoryID: cfg.RepositoryID, Prefixes: prefixes})
}
