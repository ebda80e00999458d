package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  copub config                                  # Show all config
  copub config repository-id                    # Get specific value
  copub config repository-id ECMWF.COPERNICUS   # Set value

Keys:
  repository-id  DataCite repository account
  api-url        DataCite REST API base URL
  fabrica-url    DataCite Fabrica base URL (deep links)
  site-url       Public site base for publication landing URLs
  prefix         Default DOI prefix
  db-path        Path to the local publication database`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for config get commands.
type ConfigResponse struct {
	RepositoryID string `json:"repository_id,omitempty"`
	APIURL       string `json:"api_url,omitempty"`
	FabricaURL   string `json:"fabrica_url,omitempty"`
	SiteURL      string `json:"site_url,omitempty"`
	Prefix       string `json:"prefix,omitempty"`
	DBPath       string `json:"db_path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("repository-id: %s\n", cfg.RepositoryID)
			fmt.Printf("api-url:       %s\n", cfg.APIURL)
			fmt.Printf("fabrica-url:   %s\n", cfg.FabricaURL)
			fmt.Printf("site-url:      %s\n", cfg.SiteURL)
			fmt.Printf("prefix:        %s\n", cfg.Prefix)
			fmt.Printf("db-path:       %s\n", cfg.DBPath)
		} else {
			outputJSON(ConfigResponse{
				RepositoryID: cfg.RepositoryID,
				APIURL:       cfg.APIURL,
				FabricaURL:   cfg.FabricaURL,
				SiteURL:      cfg.SiteURL,
				Prefix:       cfg.Prefix,
				DBPath:       cfg.DBPath,
			})
		}
		return nil
	}

	key := normalizeKey(args[0])
	field := configField(cfg, key)
	if field == nil {
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	// One arg: get specific value
	if len(args) == 1 {
		if humanOutput {
			fmt.Println(*field)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): *field})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if key == "db-path" {
		value = config.ExpandTilde(value)
	}
	*field = value

	if err := config.Save(cfg); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// configField maps a normalized key to the config field it names.
func configField(cfg *config.Config, key string) *string {
	switch key {
	case "repository-id":
		return &cfg.RepositoryID
	case "api-url":
		return &cfg.APIURL
	case "fabrica-url":
		return &cfg.FabricaURL
	case "site-url":
		return &cfg.SiteURL
	case "prefix":
		return &cfg.Prefix
	case "db-path":
		return &cfg.DBPath
	default:
		return nil
	}
}

// normalizeKey converts key formats (repository-id, repository_id) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
