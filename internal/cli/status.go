package cli

import (
	"github.com/julianstephens/timeledger/internal/accounting"
	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/report"
	"github.com/julianstephens/timeledger/internal/utils"
)

type StatusCmd struct {
	Date string `help:"Day to show (YYYY-MM-DD). Defaults to today."`
	JSON bool   `help:"Print the summary record as JSON."`
}

func (c *StatusCmd) Run(ctx *Context) error {
	day := c.Date
	if day == "" {
		day = ctx.Today()
	} else if _, err := utils.ParseDay(day, ctx.Location); err != nil {
		return err
	}

	f, err := ctx.Figures(day)
	if err != nil {
		return err
	}

	if c.JSON {
		return report.WriteJSON(ctx.Out, report.Build(day, f))
	}

	status := models.Session{State: f.State}
	ctx.Printf("%s: %s\n", day, status.StatusText())
	if f.Start == nil {
		return nil
	}
	if f.Stale {
		last := f.Timeline[len(f.Timeline)-1].Timestamp
		ctx.Printf("  ⚠ This day was never ended; figures stop at %s\n", utils.FormatClock(last, ctx.Location))
	}
	printFigures(ctx, f)
	return nil
}

// printFigures prints the summary block shared by status and end.
func printFigures(ctx *Context, f accounting.Figures) {
	ctx.Printf("  Started:      %s\n", utils.FormatClock(*f.Start, ctx.Location))
	if f.End != nil {
		ctx.Printf("  Ended:        %s\n", utils.FormatClock(*f.End, ctx.Location))
	}
	if f.CurrentInterval > 0 {
		ctx.Printf("  Current run:  %s\n", utils.FormatDuration(f.CurrentInterval))
	}
	ctx.Printf("  Span:         %s\n", utils.FormatDuration(f.Span))
	ctx.Printf("  Break time:   %s (%d)\n", utils.FormatDuration(f.TotalBreak), len(f.Breaks))
	ctx.Printf("  Net work:     %s\n", utils.FormatDuration(f.NetWork))

	for _, b := range f.Breaks {
		switch {
		case b.Open:
			ctx.Printf("  On break since %s: %s\n", utils.FormatClock(b.Start, ctx.Location), b.Reason)
		case f.UnresolvedBreak && f.End != nil && b.End.Equal(*f.End):
			ctx.Printf("  ⚠ Break %q was never resumed; closed at end of day\n", b.Reason)
		}
	}
}
