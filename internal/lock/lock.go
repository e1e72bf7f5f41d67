// Package lock keeps a PID lockfile so only one timeledger process appends
// events at a time.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/timeledger/internal/constants"
	"github.com/julianstephens/timeledger/internal/logger"
)

var findProcessFunc = ps.FindProcess

// ErrLocked is returned when another live process holds the lock.
var ErrLocked = errors.New("another timeledger process is running")

// HeldError names the process holding the lock.
type HeldError struct {
	PID        int
	Executable string
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("%v (pid %d, %s)", ErrLocked, e.PID, e.Executable)
}

func (e *HeldError) Is(target error) bool { return target == ErrLocked }

// Lock is a held lockfile.
type Lock struct {
	path string
}

// Acquire creates the lockfile in dir. A lockfile left behind by a dead
// process is replaced.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := filepath.Join(dir, constants.LockfileName)

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		if err := checkHolder(path); err != nil {
			return nil, err
		}
		logger.Warn("Removing stale lockfile", "path", path)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, ErrLocked
}

// checkHolder returns a HeldError if the PID in path belongs to a live
// process other than this one.
func checkHolder(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read lockfile: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return nil // malformed, treat as stale
	}
	if pid == os.Getpid() {
		return nil
	}

	process, err := findProcessFunc(pid)
	if err != nil {
		return fmt.Errorf("failed to inspect process %d: %w", pid, err)
	}
	if process == nil {
		return nil
	}
	return &HeldError{PID: pid, Executable: process.Executable()}
}

// Release removes the lockfile.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}
