package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/timeledger/internal/accounting"
	"github.com/julianstephens/timeledger/internal/lock"
	"github.com/julianstephens/timeledger/internal/utils"
)

// ErrDiagnosticsFailed is returned when any doctor check fails.
var ErrDiagnosticsFailed = errors.New("diagnostics failed")

type DoctorCmd struct{}

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	run      func(*Context) error
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
		{name: "Event log replays", needsDB: true, run: checkLogReplays},
		{name: "Unended days", needsDB: true, warnOnly: true, run: checkUnendedDays},
		{name: "Clock/timezone", run: checkClockTimezone},
		{name: "Writer lock", warnOnly: true, run: checkLock},
	}

	hasError := false
	dbReachable := false
	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Some checks failed.")
		return ErrDiagnosticsFailed
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkDBReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	sctx, cancel := ctx.StoreContext()
	defer cancel()
	return ctx.Store.Ping(sctx)
}

func checkSchemaVersion(ctx *Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d; run 'timeledger migrate'", current, latest)
	}
	return nil
}

// checkLogReplays recomputes every stored day and lists those that fail.
func checkLogReplays(ctx *Context) error {
	sctx, cancel := ctx.StoreContext()
	days, err := ctx.Store.ListDays(sctx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to list days: %w", err)
	}

	var bad []string
	for _, day := range days {
		sctx, cancel := ctx.StoreContext()
		events, err := ctx.Store.ListForDay(sctx, day)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to list events for %s: %w", day, err)
		}
		if _, err := accounting.Compute(events, ctx.Now()); err != nil {
			bad = append(bad, fmt.Sprintf("%s (%v)", day, err))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d of %d day(s) do not replay: %s", len(bad), len(days), strings.Join(bad, "; "))
	}
	return nil
}

// checkUnendedDays lists days before today that were started and never ended.
func checkUnendedDays(ctx *Context) error {
	sctx, cancel := ctx.StoreContext()
	days, err := ctx.Store.ListDays(sctx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to list days: %w", err)
	}

	today := ctx.Today()
	var open []string
	for _, day := range days {
		if day >= today {
			continue
		}
		f, err := ctx.Figures(day)
		if err != nil {
			continue // reported by the replay check
		}
		if f.Stale {
			open = append(open, day)
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("%d day(s) were started and never ended: %s; they are left out of statistics", len(open), strings.Join(open, ", "))
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := ctx.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format("2006-01-02T15:04:05Z07:00"))
	}
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("invalid timezone %q", ctx.Config.Timezone)
	}
	return nil
}

func checkLock(ctx *Context) error {
	l, err := lock.Acquire(ctx.ConfigDir)
	if err != nil {
		return err
	}
	return l.Release()
}
