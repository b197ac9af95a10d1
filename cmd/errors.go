package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/josephgoksu/tasklist/internal/kv"
	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/spf13/viper"
)

// errOut is where user-facing errors go. Tests redirect it.
var errOut io.Writer = os.Stderr

// PrintError prints a user-friendly message by default. With --verbose
// the underlying technical error is printed instead.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(errOut, "Error: %v\n", technicalErr)
		return
	}
	fmt.Fprintln(errOut, userMsg)
}

// LogError records a diagnostic at debug level; it only shows with --verbose.
func LogError(msg string, err error) {
	if err != nil {
		slog.Debug(msg, "error", err)
		return
	}
	slog.Debug(msg)
}

// userMessage maps known errors to short explanations.
func userMessage(err error) string {
	var verr *todo.ValidationError
	switch {
	case errors.As(err, &verr):
		return "Error: " + verr.Error()
	case errors.Is(err, todo.ErrNotFound):
		return "Error: no task matches that id. Run 'tasklist list' to see ids."
	case errors.Is(err, todo.ErrAmbiguousID):
		return "Error: " + err.Error() + ". Use more characters of the id."
	case errors.Is(err, todo.ErrCancelled):
		return "Cancelled."
	case errors.Is(err, kv.ErrClosed):
		return "Error: storage was closed unexpectedly."
	}
	return "Error: " + err.Error()
}

// errorKind classifies err for telemetry without leaking its text.
func errorKind(err error) string {
	var perr *todo.PersistenceError
	switch {
	case todo.IsValidation(err):
		return "validation"
	case errors.As(err, &perr):
		return "persistence"
	case errors.Is(err, todo.ErrNotFound):
		return "not_found"
	case errors.Is(err, todo.ErrAmbiguousID):
		return "ambiguous_id"
	case errors.Is(err, todo.ErrCancelled):
		return "cancelled"
	}
	return "other"
}
