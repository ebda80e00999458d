package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/datacite"
	"github.com/ecmwf-copernicus/copernicus-publication/internal/lifecycle"
	"github.com/ecmwf-copernicus/copernicus-publication/internal/mapper"
)

var (
	syncLocalOnly bool
	syncDryRun    bool
	syncState     string
	syncPrefix    string
	syncSuffix    string
	syncPassword  string
)

var syncCmd = &cobra.Command{
	Use:   "sync <metadata.xml>",
	Short: "Register a publication with DataCite",
	Long: `Register a publication described by a DataCite XML metadata document.

The full sequence is: parse and validate the document, check that the
DOI does not already exist, create it as a draft, store the publication
locally, then point the DOI at the publication's landing URL with the
requested lifecycle event.

Use --local-only to store the publication without touching DataCite,
or --dry-run to stop after validation.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	// Load .env file if present (for DATACITE_PASSWORD)
	_ = godotenv.Load()

	syncCmd.Flags().BoolVar(&syncLocalOnly, "local-only", false, "Store the publication locally without registering a DOI")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Validate the metadata document and stop")
	syncCmd.Flags().StringVar(&syncState, "state", datacite.StateDraft, "DOI lifecycle state: draft, register or publish")
	syncCmd.Flags().StringVar(&syncPrefix, "prefix", "", "DOI prefix (defaults to the configured prefix)")
	syncCmd.Flags().StringVar(&syncSuffix, "suffix", "", "DOI suffix overriding the document's identifier")
	syncCmd.Flags().StringVar(&syncPassword, "password", "", "DataCite account password (prefer DATACITE_PASSWORD)")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	switch syncState {
	case datacite.StateDraft, datacite.StateRegister, datacite.StatePublish:
	default:
		exitWithError(ExitError, "invalid --state %q: must be draft, register or publish", syncState)
	}

	doc, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitError, "reading metadata document: %v", err)
	}

	if syncDryRun {
		return runDryRun(doc)
	}

	cfg := mustLoadConfig()
	if syncPrefix == "" {
		syncPrefix = cfg.Prefix
	}

	var reg lifecycle.Registry
	if !syncLocalOnly {
		mustHaveRepositoryID(cfg)
		reg = newRegistryClient(cfg, mustGetPassword(syncPassword))
	}

	store := mustOpenStore(cfg)
	defer store.Close()

	var events []lifecycle.Event
	sink := lifecycle.SinkFunc(func(e lifecycle.Event) {
		events = append(events, e)
		if humanOutput {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", e.Severity, e.Message)
		}
	})

	controller := lifecycle.New(reg, store, sink)
	result, err := controller.Run(cmd.Context(), doc, lifecycle.Intent{
		LocalOnly: syncLocalOnly,
		State:     syncState,
		Prefix:    syncPrefix,
		Suffix:    syncSuffix,
	})
	if err != nil {
		if errors.Is(err, mapper.ErrMalformedDocument) {
			exitWithError(ExitValidationError, "%v", err)
		}
		exitWithError(ExitError, "%v", err)
	}

	resp := SyncResponse{
		State:       string(result.State),
		DOI:         result.DOI,
		Prefix:      result.Prefix,
		Suffix:      result.Suffix,
		ConflictURL: result.ConflictURL,
		Outcome:     string(result.Outcome),
		LocalID:     result.LocalID,
		LandingURL:  result.LandingURL,
		Events:      events,
		Findings:    findingsJSON(result.Findings),
	}

	if humanOutput {
		printFindingsHuman(result.Findings)
		fmt.Printf("State: %s\n", result.State)
		if result.DOI != "" {
			fmt.Printf("DOI:   %s\n", result.DOI)
		}
		if result.LandingURL != "" {
			fmt.Printf("URL:   %s\n", result.LandingURL)
		}
	} else {
		outputJSON(resp)
	}

	os.Exit(syncExitCode(result))
	return nil
}

// runDryRun validates the metadata document without registry or store access.
func runDryRun(doc []byte) error {
	_, findings, err := mapper.Parse(doc, syncState)
	if err != nil {
		exitWithError(ExitValidationError, "%v", err)
	}

	if humanOutput {
		printFindingsHuman(findings)
		if findings.HasErrors() {
			fmt.Printf("Invalid: %d error(s)\n", len(findings.Errors()))
		} else {
			fmt.Println("Valid")
		}
	} else {
		outputJSON(struct {
			Valid    bool          `json:"valid"`
			Findings []FindingJSON `json:"findings,omitempty"`
		}{
			Valid:    !findings.HasErrors(),
			Findings: findingsJSON(findings),
		})
	}

	if findings.HasErrors() {
		os.Exit(ExitValidationError)
	}
	return nil
}

// syncExitCode maps a terminal sync result onto an exit code.
func syncExitCode(result *lifecycle.Result) int {
	switch result.State {
	case lifecycle.StateInvalid:
		return ExitValidationError
	case lifecycle.StateConflict:
		return ExitConflict
	case lifecycle.StateURLUpdated:
		return ExitSuccess
	case lifecycle.StateLocallyPersisted:
		// A rejected URL update leaves the record usable but the DOI
		// pointing nowhere.
		if result.Outcome != "" {
			return ExitRegistryError
		}
		return ExitSuccess
	default:
		if result.Outcome != "" {
			return ExitRegistryError
		}
		return ExitError
	}
}
