package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/aloks98/securevault"
	"github.com/aloks98/securevault/validation"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
	headingColor = color.New(color.FgCyan, color.Bold)
	mutedColor   = color.New(color.Faint)
)

func (a *App) success(format string, args ...any) {
	successColor.Fprintf(a.out, "✓ "+format+"\n", args...)
}

// failure prints the user-facing message of err followed by the
// offending form fields, if any.
func (a *App) failure(err error) {
	var fields validation.Errors
	if errors.As(err, &fields) {
		failureColor.Fprintln(a.errOut, "✗ Please fix the following fields:")
		printFields(a.errOut, fields)
		return
	}
	failureColor.Fprintf(a.errOut, "✗ %s\n", securevault.UserMessage(err))
	a.log.Debugw("command failed", "error", err)
}

func printFields(w io.Writer, fields validation.Errors) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
	}
}

func (a *App) heading(title string) {
	headingColor.Fprintln(a.out, title)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
