package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/session"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return "Error: " + UserMessage(err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...any) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// UserMessage renders domain errors as one-line terminal messages. Other
// errors are returned verbatim.
func UserMessage(err error) string {
	var (
		invalid   *session.InvalidTransitionError
		appendErr *session.AppendFailedError
		corrupted *session.CorruptedLogError
	)
	switch {
	case err == nil:
		return ""
	case stderrors.As(err, &invalid):
		return fmt.Sprintf("Cannot %s: the day is %s.", session.ActionName(invalid.Action), invalid.State)
	case stderrors.Is(err, session.ErrMissingReason):
		return "A pause needs a reason, e.g. --reason lunch."
	case stderrors.As(err, &appendErr):
		return fmt.Sprintf("Could not record %s (%v). Nothing was saved; run the command again.",
			session.ActionName(appendErr.Action), appendErr.Err)
	case stderrors.As(err, &corrupted):
		return fmt.Sprintf("The log for %s is corrupted at event %d: %s. Run 'timeledger doctor'.",
			corrupted.Day, corrupted.Index+1, corrupted.Reason)
	default:
		return err.Error()
	}
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...any) {
	logger.Error("Command execution failed", "error", fmt.Sprintf(format, args...))
	fmt.Fprintln(os.Stderr, Formatf(format, args...))
	os.Exit(1)
}
