// Package main provides the copub CLI entry point.
package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/config"
	"github.com/ecmwf-copernicus/copernicus-publication/internal/pubstore"
	"github.com/ecmwf-copernicus/copernicus-publication/internal/registry"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "copub",
	Short: "Register Copernicus publications with DataCite",
	Long: `copub registers publication metadata with the DataCite DOI registry.

Core features:
  - Parse and validate DataCite XML metadata documents
  - Register DOIs (existence check, create, local record, landing URL)
  - Local publication database with authors and keyword terms
  - DOI suffix generation and repository prefix listing
  - Cross-check the DOI printed in an article PDF

Configuration lives in ~/.config/copub/config.yml; the DataCite account
password is read from DATACITE_PASSWORD or prompted for.
All commands output JSON by default for automation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustHaveRepositoryID validates that a repository account is configured,
// printing the setup hint otherwise.
func mustHaveRepositoryID(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
}

// mustGetPassword resolves the DataCite password: the --password flag,
// then the environment, then an interactive prompt.
func mustGetPassword(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if pw := config.Password(); pw != "" {
		return pw
	}

	fmt.Fprint(os.Stderr, "DataCite password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		exitWithError(ExitConfigError, "reading password: %v", err)
	}
	pw := strings.TrimSpace(string(raw))
	if pw == "" {
		exitWithError(ExitConfigError, "no password given; set %s or use --password", config.EnvPassword)
	}
	return pw
}

// newRegistryClient builds the DataCite client from config.
func newRegistryClient(cfg *config.Config, password string) *registry.Client {
	return registry.NewClient(cfg.RepositoryID, password,
		registry.WithBaseURL(cfg.APIURL),
		registry.WithFabricaURL(cfg.FabricaURL))
}

// mustOpenStore opens the local publication database, exits on error.
// The caller is responsible for calling Close() on the returned store.
func mustOpenStore(cfg *config.Config) *pubstore.Store {
	store, err := pubstore.Open(cfg.DBPath, cfg.SiteURL)
	if err != nil {
		exitWithError(ExitError, "opening publication database: %v", err)
	}
	return store
}
