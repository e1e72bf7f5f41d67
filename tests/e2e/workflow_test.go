package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestEndToEndWorkflow(t *testing.T) {
	// 1. Setup Environment
	// Allow overriding bin dir via env var, default to ../../bin (relative to tests/e2e)
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("TIMELEDGER_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	t.Logf("Using bin dir: %s", binDir)

	cliPath := filepath.Join(binDir, "timeledger")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s. Build it with 'go build -o bin/timeledger ./cmd/timeledger'.", cliPath)
	}

	// Create temp home for isolation
	tempDir := t.TempDir()
	t.Logf("Running test in temp dir: %s", tempDir)

	configPath := filepath.Join(tempDir, "timeledger", "config.yaml")
	reportDir := filepath.Join(tempDir, "reports")
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	config := fmt.Sprintf("database: %s\ntimezone: UTC\nreport_dir: %s\n",
		filepath.Join(tempDir, "timeledger", "timeledger.db"), reportDir)
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	var cleanEnv []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "TIMELEDGER_") {
			cleanEnv = append(cleanEnv, e)
		}
	}
	cleanEnv = append(cleanEnv,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("TIMELEDGER_CONFIG=%s", configPath),
	)

	// 2. Initialize storage
	t.Log("Initializing CLI...")
	runCmd(t, cliPath, cleanEnv, tempDir, "init")

	// 3. Forbidden transitions leave the log untouched
	if out, err := tryCmd(cliPath, cleanEnv, tempDir, "resume"); err == nil {
		t.Fatalf("resume on an idle day succeeded:\n%s", out)
	}

	// 4. Work the day
	t.Log("Working the day...")
	runCmd(t, cliPath, cleanEnv, tempDir, "start")
	runCmd(t, cliPath, cleanEnv, tempDir, "pause", "--reason", "lunch")
	runCmd(t, cliPath, cleanEnv, tempDir, "resume")
	out := runCmd(t, cliPath, cleanEnv, tempDir, "end", "--report")
	if !strings.Contains(out, "Report saved to:") {
		t.Fatalf("end --report did not write a report:\n%s", out)
	}

	// 5. Status as JSON
	var summary struct {
		Date       string `json:"date"`
		InProgress bool   `json:"in_progress"`
		Breaks     []struct {
			Reason string `json:"reason"`
		} `json:"breaks"`
	}
	out = runCmd(t, cliPath, cleanEnv, tempDir, "status", "--json")
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("status --json is not JSON: %v\n%s", err, out)
	}
	if summary.InProgress || len(summary.Breaks) != 1 || summary.Breaks[0].Reason != "lunch" {
		t.Errorf("unexpected summary: %+v", summary)
	}

	// 6. Verify, then tamper
	reports, err := filepath.Glob(filepath.Join(reportDir, "*-TimeLedger.csv"))
	if err != nil || len(reports) != 1 {
		t.Fatalf("expected one report in %s, got %v (%v)", reportDir, reports, err)
	}
	runCmd(t, cliPath, cleanEnv, tempDir, "verify", reports[0])
	if err := os.WriteFile(reports[0], []byte("tampered"), 0644); err != nil {
		t.Fatal(err)
	}
	if out, err := tryCmd(cliPath, cleanEnv, tempDir, "verify", reports[0]); err == nil {
		t.Errorf("verify accepted a tampered report:\n%s", out)
	}

	// 7. Health check and automatic snapshot
	runCmd(t, cliPath, cleanEnv, tempDir, "doctor")
	out = runCmd(t, cliPath, cleanEnv, tempDir, "backup", "list")
	if !strings.Contains(out, "1 total") {
		t.Errorf("expected the end-of-day snapshot:\n%s", out)
	}

	// 8. A live lock holder blocks writers
	lockfilePath := filepath.Join(tempDir, "timeledger", "timeledger.lock")
	if err := os.WriteFile(lockfilePath, []byte(fmt.Sprint(os.Getpid())), 0600); err != nil {
		t.Fatal(err)
	}
	if out, err := tryCmd(cliPath, cleanEnv, tempDir, "start"); err == nil || !strings.Contains(out, "another timeledger process") {
		t.Errorf("start ran while locked: %v\n%s", err, out)
	}
}

func runCmd(t *testing.T, path string, env []string, dir string, args ...string) string {
	t.Helper()
	out, err := tryCmd(path, env, dir, args...)
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return out
}

func tryCmd(path string, env []string, dir string, args ...string) (string, error) {
	cmd := exec.Command(path, args...)
	cmd.Env = env
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}
