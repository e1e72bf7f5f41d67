package lock

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/timeledger/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withProcesses(t *testing.T, live map[int]string) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		if exe, ok := live[pid]; ok {
			return &mockProcess{pid: pid, executable: exe}, nil
		}
		return nil, nil
	}
}

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, nil)

	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(dir, constants.LockfileName))
	if err != nil {
		t.Fatalf("lockfile missing: %v", err)
	}
	if string(content) != strconv.Itoa(os.Getpid()) {
		t.Errorf("lockfile content = %q", content)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, constants.LockfileName)); !errors.Is(err, os.ErrNotExist) {
		t.Error("lockfile not removed")
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error: %v", err)
	}
}

func TestAcquireHeldByLiveProcess(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, map[int]string{424242: "timeledger"})
	if err := os.WriteFile(filepath.Join(dir, constants.LockfileName), []byte("424242"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Acquire(dir)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("Acquire() error = %v, want ErrLocked", err)
	}
	var held *HeldError
	if !errors.As(err, &held) || held.PID != 424242 || held.Executable != "timeledger" {
		t.Errorf("HeldError = %+v", held)
	}
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"dead process", "424242"},
		{"malformed", "not-a-pid"},
		{"own pid", strconv.Itoa(os.Getpid())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			withProcesses(t, nil)
			if err := os.WriteFile(filepath.Join(dir, constants.LockfileName), []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			l, err := Acquire(dir)
			if err != nil {
				t.Fatalf("Acquire() error: %v", err)
			}
			defer l.Release()
		})
	}
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release() error: %v", err)
	}
}
