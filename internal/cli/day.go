package cli

import (
	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/report"
	"github.com/julianstephens/timeledger/internal/session"
	"github.com/julianstephens/timeledger/internal/utils"
)

type StartCmd struct{}

func (c *StartCmd) Run(ctx *Context) error {
	s, err := ctx.Act(session.StartWork())
	if err != nil {
		return err
	}
	ctx.Printf("Work started at %s\n", lastClock(ctx, s))
	return nil
}

type PauseCmd struct {
	Reason string `short:"r" required:"" help:"Why you are stepping away (e.g. lunch)."`
}

func (c *PauseCmd) Run(ctx *Context) error {
	s, err := ctx.Act(session.Pause(c.Reason))
	if err != nil {
		return err
	}
	ctx.Printf("Paused at %s: %s\n", lastClock(ctx, s), s.ActiveBreakReason)
	return nil
}

type ResumeCmd struct{}

func (c *ResumeCmd) Run(ctx *Context) error {
	s, err := ctx.Act(session.Resume())
	if err != nil {
		return err
	}
	ctx.Printf("Resumed at %s\n", lastClock(ctx, s))
	return nil
}

type EndCmd struct {
	Report bool   `help:"Write the daily report after ending."`
	Format string `default:"csv" enum:"csv,json" help:"Report format when --report is set."`
}

func (c *EndCmd) Run(ctx *Context) error {
	s, err := ctx.Act(session.EndDay())
	if err != nil {
		return err
	}
	ctx.Printf("Day ended at %s\n", lastClock(ctx, s))
	ctx.AutoBackup()

	f, err := ctx.Figures(s.Day)
	if err != nil {
		return err
	}
	printFigures(ctx, f)

	if !c.Report {
		return nil
	}
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	_, err = ctx.WriteReport(s.Day, format, "", false)
	return err
}

func lastClock(ctx *Context, s models.Session) string {
	last, ok := s.LastEvent()
	if !ok {
		return "-"
	}
	return utils.FormatClock(last.Timestamp, ctx.Location)
}
