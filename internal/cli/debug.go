package cli

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/session"
	"github.com/julianstephens/timeledger/internal/utils"
)

type DebugCmd struct {
	DBPath  *DebugDBPathCmd  `cmd:"" help:"Show database location and log file."`
	DumpDay *DebugDumpDayCmd `cmd:"" help:"Dump a day's replayed session as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	return printJSON(ctx, map[string]string{
		"path": ctx.Store.GetConfigPath(),
		"log":  logger.LogPath(ctx.ConfigDir),
	})
}

type DebugDumpDayCmd struct {
	Date string `arg:"" help:"Day to dump (YYYY-MM-DD or 'today')."`
}

func (cmd *DebugDumpDayCmd) Run(ctx *Context) error {
	day := cmd.Date
	if day == "today" {
		day = ctx.Today()
	}
	if _, err := utils.ParseDay(day, ctx.Location); err != nil {
		return err
	}

	sctx, cancel := ctx.StoreContext()
	defer cancel()
	events, err := ctx.Store.ListForDay(sctx, day)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("no events recorded for %s", day)
	}

	s, err := session.Replay(day, events)
	if err != nil {
		// Dump the raw log so the bad event can be inspected.
		logger.Warn("Dumping unreplayable day", "day", day, "error", err)
		if perr := printJSON(ctx, events); perr != nil {
			return perr
		}
		return err
	}
	return printJSON(ctx, s)
}

func printJSON(ctx *Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
