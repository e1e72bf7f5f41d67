package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/julianstephens/timeledger/internal/constants"
	"github.com/julianstephens/timeledger/internal/utils"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown report format %q (want csv or json)", s)
}

// Filename is the report file name for day, e.g. 2026-03-02-TimeLedger.csv.
func Filename(day string, format Format) string {
	return day + constants.ReportFileSuffix + "." + string(format)
}

// WriteCSV renders s as the sectioned daily CSV report. Clock times are shown
// in loc; generatedAt is printed in the footer.
func WriteCSV(w io.Writer, s Summary, loc *time.Location, generatedAt time.Time) error {
	cw := csv.NewWriter(w)

	clockOr := func(t *time.Time) string {
		if t == nil {
			return "N/A"
		}
		return utils.FormatClock(*t, loc)
	}
	lastEnd := clockOr(s.EndTime)
	if s.InProgress {
		lastEnd = "In progress"
	}

	rows := [][]string{
		{constants.ReportTitle},
		{"Date", s.Date},
		{"Timezone", loc.String()},
		{},
		{"=== SUMMARY ==="},
		{"Field", "Value"},
		{"Date", s.Date},
		{"First Start", clockOr(s.StartTime)},
		{"Last End", lastEnd},
		{"Total Span", utils.FormatDuration(s.Span())},
		{"Total Break Time", utils.FormatDuration(s.TotalBreak())},
		{"Net Work Time", utils.FormatDuration(s.NetWork())},
		{"Number of Breaks", strconv.Itoa(len(s.Breaks))},
	}
	if s.UnresolvedBreak {
		rows = append(rows, []string{"Unresolved Break", "Day ended while on break"})
	}
	rows = append(rows, []string{})

	if len(s.Breaks) > 0 {
		rows = append(rows,
			[]string{"=== BREAK REASONS ==="},
			[]string{"Break #", "Reason", "Duration"},
		)
		for i, b := range s.Breaks {
			rows = append(rows, []string{
				fmt.Sprintf("Break %d", i+1),
				b.Reason,
				utils.FormatDuration(time.Duration(b.DurationSeconds) * time.Second),
			})
		}
		rows = append(rows, []string{})
	}

	rows = append(rows,
		[]string{"=== EVENT TIMELINE ==="},
		[]string{"#", "Time (Local)", "Action", "Since Last", "Reason"},
	)
	for i, e := range s.Timeline {
		reason := e.Reason
		if reason == "" {
			reason = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			utils.FormatClock(e.Timestamp, loc),
			string(e.Kind),
			utils.FormatDuration(time.Duration(e.SinceLastSeconds) * time.Second),
			reason,
		})
	}
	rows = append(rows,
		[]string{},
		[]string{"Report generated at:", generatedAt.In(loc).Format(constants.DateFormat + " " + constants.TimeFormat)},
	)

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv report: %w", err)
	}
	return nil
}

// WriteJSON emits s as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to write json report: %w", err)
	}
	return nil
}
