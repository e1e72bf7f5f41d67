package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/timeledger/internal/accounting"
	"github.com/julianstephens/timeledger/internal/report"
	"github.com/julianstephens/timeledger/internal/utils"
)

type ReportCmd struct {
	Date   string `help:"Day to report (YYYY-MM-DD). Defaults to today."`
	Format string `default:"csv" enum:"csv,json" help:"Output format."`
	Out    string `help:"Directory to write the report into. Defaults to report_dir."`
	NoHash bool   `help:"Do not record the report's SHA-256."`
}

func (c *ReportCmd) Run(ctx *Context) error {
	day := c.Date
	if day == "" {
		day = ctx.Today()
	} else if _, err := utils.ParseDay(day, ctx.Location); err != nil {
		return err
	}
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	_, err = ctx.WriteReport(day, format, c.Out, c.NoHash)
	return err
}

type VerifyCmd struct {
	File string `arg:"" type:"existingfile" help:"Report file to check."`
}

// ErrReportModified is returned when a report no longer matches any recorded hash.
var ErrReportModified = errors.New("report does not match its recorded hash")

func (c *VerifyCmd) Run(ctx *Context) error {
	sctx, cancel := ctx.StoreContext()
	defer cancel()

	v, err := report.Verify(sctx, ctx.Store, c.File)
	if err != nil {
		if errors.Is(err, report.ErrNoHashRecord) {
			return fmt.Errorf("no hash recorded for %s; it was generated with --no-hash or elsewhere", v.Filename)
		}
		return err
	}

	ctx.Printf("File:     %s\n", v.Filename)
	ctx.Printf("SHA-256:  %s\n", v.SHA256)
	ctx.Printf("Records:  %d\n", len(v.Recorded))
	if !v.Match {
		ctx.Println("❌ Report has been modified since it was generated")
		return ErrReportModified
	}
	ctx.Println("✓ Report matches its recorded hash")
	return nil
}

type StatsCmd struct {
	Range string `default:"week" enum:"day,week,month" help:"Period around --date to total."`
	Date  string `help:"Anchor day (YYYY-MM-DD). Defaults to today."`
	From  string `help:"First day of an explicit range (YYYY-MM-DD)."`
	To    string `help:"Last day of an explicit range (YYYY-MM-DD)."`
}

// period resolves the inclusive day range the flags select.
func (c *StatsCmd) period(ctx *Context) (string, string, error) {
	if c.From != "" || c.To != "" {
		if c.From == "" || c.To == "" {
			return "", "", errors.New("--from and --to must be given together")
		}
		for _, d := range []string{c.From, c.To} {
			if _, err := utils.ParseDay(d, ctx.Location); err != nil {
				return "", "", err
			}
		}
		if c.From > c.To {
			return "", "", fmt.Errorf("--from %s is after --to %s", c.From, c.To)
		}
		return c.From, c.To, nil
	}

	anchor := c.Date
	if anchor == "" {
		anchor = ctx.Today()
	}
	switch c.Range {
	case "day":
		if _, err := utils.ParseDay(anchor, ctx.Location); err != nil {
			return "", "", err
		}
		return anchor, anchor, nil
	case "month":
		return utils.MonthRange(anchor)
	default:
		return utils.WeekRange(anchor)
	}
}

func (c *StatsCmd) Run(ctx *Context) error {
	from, to, err := c.period(ctx)
	if err != nil {
		return err
	}

	sctx, cancel := ctx.StoreContext()
	defer cancel()
	events, err := ctx.Store.ListForRange(sctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to list events for %s..%s: %w", from, to, err)
	}

	totals := accounting.Aggregate(from, to, ctx.Today(), events, ctx.Now())
	printTotals(ctx, totals)
	return nil
}

func printTotals(ctx *Context, t accounting.Totals) {
	ctx.Printf("Statistics for %s to %s\n\n", t.From, t.To)
	if len(t.Days) == 0 {
		ctx.Println("No work recorded in this period.")
	} else {
		ctx.Printf("%-10s  %-8s  %-8s  %-8s  %-8s  %-8s\n", "Date", "Start", "End", "Span", "Break", "Net")
		for _, f := range t.Days {
			end := "running"
			if f.End != nil {
				end = utils.FormatClock(*f.End, ctx.Location)
			}
			ctx.Printf("%-10s  %-8s  %-8s  %-8s  %-8s  %-8s\n",
				f.Day,
				utils.FormatClock(*f.Start, ctx.Location),
				end,
				utils.FormatDuration(f.Span),
				utils.FormatDuration(f.TotalBreak),
				utils.FormatDuration(f.NetWork),
			)
		}
		ctx.Println()
		ctx.Printf("Days worked:       %d\n", len(t.Days))
		ctx.Printf("Total span:        %s\n", utils.FormatDuration(t.Span))
		ctx.Printf("Total break time:  %s (%d breaks)\n", utils.FormatDuration(t.TotalBreak), t.BreakCount)
		ctx.Printf("Net work:          %s\n", utils.FormatDuration(t.NetWork))
		ctx.Printf("Average per day:   %s\n", utils.FormatDuration(t.AverageNetWork().Truncate(time.Second)))
	}

	if len(t.Corrupted) > 0 {
		ctx.Println()
		ctx.Printf("⚠ Skipped %d corrupted day(s):\n", len(t.Corrupted))
		for _, d := range t.Corrupted {
			ctx.Printf("  %s: %v\n", d.Day, d.Err)
		}
	}
	if len(t.Unended) > 0 {
		ctx.Println()
		ctx.Printf("⚠ Left out %d day(s) that were never ended:\n", len(t.Unended))
		for _, day := range t.Unended {
			ctx.Printf("  %s\n", day)
		}
	}
}
