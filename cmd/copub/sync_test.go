package main

import (
	"testing"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/lifecycle"
	"github.com/ecmwf-copernicus/copernicus-publication/internal/registry"
)

func TestSyncExitCode(t *testing.T) {
	tests := []struct {
		name   string
		result lifecycle.Result
		want   int
	}{
		{"url updated", lifecycle.Result{State: lifecycle.StateURLUpdated}, ExitSuccess},
		{"local only", lifecycle.Result{State: lifecycle.StateLocallyPersisted}, ExitSuccess},
		{"record kept but url update refused", lifecycle.Result{
			State:   lifecycle.StateLocallyPersisted,
			Outcome: registry.OutcomeSchemaError,
		}, ExitRegistryError},
		{"invalid document", lifecycle.Result{State: lifecycle.StateInvalid}, ExitValidationError},
		{"conflict", lifecycle.Result{State: lifecycle.StateConflict}, ExitConflict},
		{"create refused", lifecycle.Result{
			State:   lifecycle.StateExistenceChecked,
			Outcome: registry.OutcomeUnauthorized,
		}, ExitRegistryError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := syncExitCode(&tt.result); got != tt.want {
				t.Errorf("syncExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"repository-id", "repository-id"},
		{"repository_id", "repository-id"},
		{"Repository_ID", "repository-id"},
		{"db_path", "db-path"},
	}
	for _, tt := range tests {
		if got := normalizeKey(tt.in); got != tt.want {
			t.Errorf("normalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
