package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/session"
	"github.com/julianstephens/timeledger/internal/storage"
	"github.com/julianstephens/timeledger/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing SQLite database before initialization."`
	Source string `help:"Database setting (path, connection string, firestore://project or keyring) to copy the event log from."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized timeledger storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying events from: %s\n", c.Source)
		source, err := OpenStore(c.Source)
		if err != nil {
			return fmt.Errorf("invalid source: %w", err)
		}
		if err := source.Load(); err != nil {
			return fmt.Errorf("failed to load source database: %w", err)
		}
		defer source.Close()

		if err := copyLog(ctx, source, ctx.Store); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Println("Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) removeExisting(ctx *Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return errors.New("--force only applies to SQLite databases")
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err1 := filepath.Abs(dbPath)
		absSource, err2 := filepath.Abs(c.Source)
		if err1 == nil && err2 == nil && absDB == absSource {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

// sourceDay is one day read from the source log.
type sourceDay struct {
	day    string
	events []models.Event
}

// copyLog appends every day of src to dst in log order, together with the
// day's report hashes. Every day is read and checked before anything is
// written: each must replay cleanly and must not already exist in dst.
func copyLog(ctx *Context, src, dst storage.Provider) error {
	lctx, cancel := ctx.StoreContext()
	days, err := src.ListDays(lctx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to list source days: %w", err)
	}

	plan := make([]sourceDay, 0, len(days))
	for _, day := range days {
		events, err := checkDay(ctx, src, dst, day)
		if err != nil {
			return err
		}
		plan = append(plan, sourceDay{day: day, events: events})
	}

	var events, hashes int
	for _, d := range plan {
		h, err := copyDay(ctx, src, dst, d)
		if err != nil {
			return fmt.Errorf("%w; the destination now holds a partial copy, re-run with --force --source to start over", err)
		}
		events += len(d.events)
		hashes += h
	}
	ctx.Printf("  Copied %d event(s) across %d day(s) and %d report hash(es)\n", events, len(days), hashes)
	return nil
}

// checkDay reads day from src and fails if it does not replay or dst already
// has events for it.
func checkDay(ctx *Context, src, dst storage.Provider, day string) ([]models.Event, error) {
	sctx, cancel := ctx.StoreContext()
	defer cancel()

	events, err := src.ListForDay(sctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from source: %w", day, err)
	}
	if _, err := session.Replay(day, events); err != nil {
		return nil, err
	}
	existing, err := dst.ListForDay(sctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from destination: %w", day, err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("destination already has %d event(s) for %s", len(existing), day)
	}
	return events, nil
}

func copyDay(ctx *Context, src, dst storage.Provider, d sourceDay) (int, error) {
	sctx, cancel := ctx.StoreContext()
	defer cancel()

	for _, ev := range d.events {
		if _, err := dst.Append(sctx, ev); err != nil {
			return 0, fmt.Errorf("failed to copy %s event of %s: %w", ev.Kind, d.day, err)
		}
	}

	records, err := src.ListReportHashes(sctx, d.day)
	if err != nil {
		return 0, fmt.Errorf("failed to read report hashes for %s: %w", d.day, err)
	}
	for _, rec := range records {
		if _, err := dst.RecordReportHash(sctx, rec); err != nil {
			return 0, fmt.Errorf("failed to copy report hash for %s: %w", d.day, err)
		}
	}
	return len(records), nil
}
