package report

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/timeledger/internal/clock"
	"github.com/julianstephens/timeledger/internal/constants"
	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/storage"
)

// ErrNoHashRecord is returned by Verify when no hash was recorded for the file.
var ErrNoHashRecord = errors.New("no hash recorded for report")

// Generator writes report files and records their digests.
type Generator struct {
	Hashes   storage.HashRecorder // nil disables hash recording
	Dir      string
	Location *time.Location
	Clock    clock.Clock
}

// Result describes a written report.
type Result struct {
	Path     string
	SHA256   string
	Recorded bool
}

// Generate renders s in format, writes it under g.Dir and appends its
// SHA-256 to the hash record store. A failed hash record is logged and
// reported through Result.Recorded; the file is kept.
func (g *Generator) Generate(ctx context.Context, s Summary, format Format) (Result, error) {
	loc := g.Location
	if loc == nil {
		loc = time.Local
	}
	clk := g.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		if err := WriteCSV(&buf, s, loc, clk.Now()); err != nil {
			return Result{}, err
		}
	case FormatJSON:
		if err := WriteJSON(&buf, s); err != nil {
			return Result{}, err
		}
	default:
		return Result{}, fmt.Errorf("unknown report format %q", format)
	}

	dir := g.Dir
	if dir == "" {
		dir = constants.DefaultReportDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create report directory: %w", err)
	}

	name := Filename(s.Date, format)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return Result{}, fmt.Errorf("failed to write report: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	res := Result{Path: path, SHA256: hex.EncodeToString(sum[:])}
	logger.Info("Report written", "path", path, "sha256", res.SHA256)

	if g.Hashes == nil {
		return res, nil
	}
	_, err := g.Hashes.RecordReportHash(ctx, models.ReportHash{
		Day:       s.Date,
		Filename:  name,
		SHA256:    res.SHA256,
		CreatedAt: clk.Now().UTC(),
	})
	if err != nil {
		logger.Warn("Failed to record report hash", "path", path, "error", err)
		return res, nil
	}
	res.Recorded = true
	return res, nil
}

// FileHash returns the hex SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DayFromFilename extracts the date from a report file name.
func DayFromFilename(name string) (string, bool) {
	base := filepath.Base(name)
	i := strings.Index(base, constants.ReportFileSuffix+".")
	if i != len(constants.DateFormat) {
		return "", false
	}
	day := base[:i]
	if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return "", false
	}
	return day, true
}

// Verification is the outcome of checking a report against its records.
type Verification struct {
	Day      string
	Filename string
	SHA256   string
	Match    bool
	Recorded []models.ReportHash
}

// Verify recomputes the digest of the report at path and compares it with
// every hash recorded for that file. Any matching record counts.
func Verify(ctx context.Context, hashes storage.HashRecorder, path string) (Verification, error) {
	name := filepath.Base(path)
	day, ok := DayFromFilename(name)
	if !ok {
		return Verification{}, fmt.Errorf("%s is not a report file name", name)
	}

	sum, err := FileHash(path)
	if err != nil {
		return Verification{}, err
	}

	records, err := hashes.ListReportHashes(ctx, day)
	if err != nil {
		return Verification{}, fmt.Errorf("failed to list report hashes for %s: %w", day, err)
	}

	v := Verification{Day: day, Filename: name, SHA256: sum}
	for _, r := range records {
		if r.Filename != name {
			continue
		}
		v.Recorded = append(v.Recorded, r)
		if r.SHA256 == sum {
			v.Match = true
		}
	}
	if len(v.Recorded) == 0 {
		return v, ErrNoHashRecord
	}
	return v, nil
}
