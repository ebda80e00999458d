package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/registry"
)

// setTestConfigHome points XDG_CONFIG_HOME at a temp dir and clears the
// cache and environment overrides for the duration of the test.
func setTestConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvRepositoryID, "")
	t.Setenv(EnvPassword, "")
	ResetCache()
	t.Cleanup(ResetCache)
	return dir
}

func TestPath(t *testing.T) {
	dir := setTestConfigHome(t)

	want := filepath.Join(dir, "copub", "config.yml")
	if got := Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	setTestConfigHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != registry.APIURL {
		t.Errorf("APIURL = %q, want production default", cfg.APIURL)
	}
	if cfg.FabricaURL != registry.FabricaURL {
		t.Errorf("FabricaURL = %q, want production default", cfg.FabricaURL)
	}
	if cfg.DBPath == "" {
		t.Error("DBPath default should be set")
	}
	if cfg.RepositoryID != "" {
		t.Errorf("RepositoryID = %q, want empty", cfg.RepositoryID)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := setTestConfigHome(t)

	path := filepath.Join(dir, "copub", "config.yml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "repository_id: ECMWF.COPERNICUS\napi_url: https://api.test.datacite.org/\nprefix: \"10.82044\"\nsite_url: https://publications.example.org\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RepositoryID != "ECMWF.COPERNICUS" {
		t.Errorf("RepositoryID = %q", cfg.RepositoryID)
	}
	if cfg.APIURL != "https://api.test.datacite.org/" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Prefix != "10.82044" {
		t.Errorf("Prefix = %q", cfg.Prefix)
	}
	// Unset fields still get defaults.
	if cfg.FabricaURL != registry.FabricaURL {
		t.Errorf("FabricaURL = %q, want production default", cfg.FabricaURL)
	}
}

func TestLoad_EnvOverridesRepositoryID(t *testing.T) {
	setTestConfigHome(t)
	t.Setenv(EnvRepositoryID, "OTHER.ACCOUNT")
	ResetCache()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RepositoryID != "OTHER.ACCOUNT" {
		t.Errorf("RepositoryID = %q, want env override", cfg.RepositoryID)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	setTestConfigHome(t)

	if err := Save(&Config{RepositoryID: "ECMWF.COPERNICUS", Prefix: "10.82044"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RepositoryID != "ECMWF.COPERNICUS" || cfg.Prefix != "10.82044" {
		t.Errorf("round trip = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != ErrRepositoryIDNotConfigured {
		t.Errorf("Validate() = %v, want ErrRepositoryIDNotConfigured", err)
	}

	cfg.RepositoryID = "ECMWF.COPERNICUS"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/data/pubs.db", filepath.Join(home, "data/pubs.db")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}
	for _, tt := range tests {
		if got := ExpandTilde(tt.in); got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
