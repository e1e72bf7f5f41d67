package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg Config)
		wantErr string
	}{
		{
			name: "all fields",
			content: `
database: postgres://ledger@localhost/timeledger
timezone: UTC
report_dir: /tmp/reports
store_timeout: 3s
debug: true
`,
			check: func(t *testing.T, cfg Config) {
				if cfg.Database != "postgres://ledger@localhost/timeledger" || cfg.Timezone != "UTC" ||
					cfg.ReportDir != "/tmp/reports" || cfg.StoreTimeout != 3*time.Second || !cfg.Debug {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
		{
			name:    "partial file keeps defaults",
			content: "timezone: Europe/Berlin\n",
			check: func(t *testing.T, cfg Config) {
				d := Default()
				if cfg.Timezone != "Europe/Berlin" || cfg.Database != d.Database || cfg.StoreTimeout != d.StoreTimeout {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
		{
			name:    "bad duration",
			content: "store_timeout: soon\n",
			wantErr: "store_timeout",
		},
		{
			name:    "negative duration",
			content: "store_timeout: -1s\n",
			wantErr: "must be positive",
		},
		{
			name:    "bad timezone",
			content: "timezone: Mars/Olympus\n",
			wantErr: "timezone",
		},
		{
			name:    "bad yaml",
			content: "database: [unterminated\n",
			wantErr: "parse config yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Config{
		Database:     "firestore://ledger-project",
		Timezone:     "UTC",
		ReportDir:    "reports",
		StoreTimeout: 30 * time.Second,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("TIMELEDGER_CONFIG", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	p, err := Path("")
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if p != filepath.Join(home, ".config", "timeledger", "config.yaml") {
		t.Errorf("Path() = %s", p)
	}

	t.Setenv("TIMELEDGER_CONFIG", "/etc/timeledger.yaml")
	if p, _ := Path(""); p != "/etc/timeledger.yaml" {
		t.Errorf("Path() with env = %s", p)
	}
	if p, _ := Path("/explicit.yaml"); p != "/explicit.yaml" {
		t.Errorf("Path() explicit = %s", p)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := map[string]string{
		"~":           home,
		"~/x/y.db":    filepath.Join(home, "x", "y.db"),
		"/abs/y.db":   "/abs/y.db",
		"rel/~/y.db":  "rel/~/y.db",
		"~other/y.db": "~other/y.db",
	}
	for in, want := range tests {
		if got, _ := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
