package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/timeledger/internal/accounting"
	"github.com/julianstephens/timeledger/internal/clock"
	"github.com/julianstephens/timeledger/internal/config"
	"github.com/julianstephens/timeledger/internal/lock"
	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/report"
	"github.com/julianstephens/timeledger/internal/session"
	"github.com/julianstephens/timeledger/internal/storage"
	"github.com/julianstephens/timeledger/internal/utils"
)

type Context struct {
	Store    storage.Provider
	Engine   *session.Engine
	Config   config.Config
	Clock    clock.Clock
	Location *time.Location

	// ConfigPath is the YAML file the settings command writes to.
	ConfigPath string
	// ConfigDir holds the lockfile and logs.
	ConfigDir string

	Out io.Writer
}

// NewContext wires an engine over store. A nil clock means the system clock.
func NewContext(store storage.Provider, cfg config.Config, clk clock.Clock) (*Context, error) {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return &Context{
		Store:    store,
		Engine:   session.NewEngine(store, clk),
		Config:   cfg,
		Clock:    clk,
		Location: loc,
		Out:      os.Stdout,
	}, nil
}

// StoreContext bounds a single store call by the configured timeout.
func (c *Context) StoreContext() (context.Context, context.CancelFunc) {
	timeout := c.Config.StoreTimeout
	if timeout <= 0 {
		timeout = config.Default().StoreTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (c *Context) Now() time.Time {
	return c.Clock.Now()
}

// Today is the ledger day of the current instant in the configured timezone.
func (c *Context) Today() string {
	return utils.DayOf(c.Now(), c.Location)
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Session replays today's log.
func (c *Context) Session() (models.Session, error) {
	sctx, cancel := c.StoreContext()
	defer cancel()
	return c.Engine.Load(sctx, c.Today())
}

// Act applies a to today's session while holding the writer lock.
func (c *Context) Act(a session.Action) (models.Session, error) {
	l, err := lock.Acquire(c.ConfigDir)
	if err != nil {
		return models.Session{}, err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release lock", "error", err)
		}
	}()

	s, err := c.Session()
	if err != nil {
		return models.Session{}, err
	}

	sctx, cancel := c.StoreContext()
	defer cancel()
	return c.Engine.Apply(sctx, s, a)
}

// Figures computes the accounting figures for day as of now. A past day
// that was never ended stops at its last event.
func (c *Context) Figures(day string) (accounting.Figures, error) {
	sctx, cancel := c.StoreContext()
	defer cancel()
	events, err := c.Store.ListForDay(sctx, day)
	if err != nil {
		return accounting.Figures{}, fmt.Errorf("failed to list events for %s: %w", day, err)
	}
	if len(events) == 0 {
		return accounting.Figures{Day: day, State: models.StateIdle}, nil
	}
	return accounting.ComputeDay(events, c.Today(), c.Now())
}

// Generator writes reports into dir, recording hashes unless noHash is set.
func (c *Context) Generator(dir string, noHash bool) (*report.Generator, error) {
	if dir == "" {
		dir = c.Config.ReportDir
	}
	dir, err := config.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	g := &report.Generator{
		Hashes:   c.Store,
		Dir:      dir,
		Location: c.Location,
		Clock:    c.Clock,
	}
	if noHash {
		g.Hashes = nil
	}
	return g, nil
}

// WriteReport generates the report for day and prints where it went.
func (c *Context) WriteReport(day string, format report.Format, dir string, noHash bool) (report.Result, error) {
	f, err := c.Figures(day)
	if err != nil {
		return report.Result{}, err
	}
	if f.Start == nil {
		return report.Result{}, fmt.Errorf("no work recorded for %s", day)
	}

	g, err := c.Generator(dir, noHash)
	if err != nil {
		return report.Result{}, err
	}
	sctx, cancel := c.StoreContext()
	defer cancel()
	res, err := g.Generate(sctx, report.Build(day, f), format)
	if err != nil {
		return report.Result{}, err
	}

	c.Printf("Report saved to: %s\n", res.Path)
	switch {
	case noHash:
	case res.Recorded:
		c.Printf("SHA-256: %s\n", res.SHA256)
	default:
		c.Printf("⚠ SHA-256 %s could not be recorded; see the log for details\n", res.SHA256)
	}
	return res, nil
}
