package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/lifecycle"
	"github.com/ecmwf-copernicus/copernicus-publication/internal/mapper"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FindingJSON is one validation finding in JSON output.
type FindingJSON struct {
	Severity string `json:"severity"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// SyncResponse is the JSON result of a sync attempt.
type SyncResponse struct {
	State       string            `json:"state"`
	DOI         string            `json:"doi,omitempty"`
	Prefix      string            `json:"prefix,omitempty"`
	Suffix      string            `json:"suffix,omitempty"`
	ConflictURL string            `json:"conflict_url,omitempty"`
	Outcome     string            `json:"outcome,omitempty"`
	LocalID     int64             `json:"local_id,omitempty"`
	LandingURL  string            `json:"landing_url,omitempty"`
	Events      []lifecycle.Event `json:"events,omitempty"`
	Findings    []FindingJSON     `json:"findings,omitempty"`
}

// findingsJSON converts findings for JSON output.
func findingsJSON(findings mapper.Findings) []FindingJSON {
	out := make([]FindingJSON, 0, len(findings))
	for _, f := range findings {
		out = append(out, FindingJSON{
			Severity: string(f.Severity),
			Field:    f.Field,
			Message:  f.Message,
		})
	}
	return out
}

// printFindingsHuman prints validation findings in human-readable form.
func printFindingsHuman(findings mapper.Findings) {
	for _, f := range findings {
		fmt.Printf("[%s] %s: %s\n", f.Severity, f.Field, f.Message)
	}
}
