package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Replaced in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// promptLine prints prompt and reads one trimmed line.
func promptLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprintf(w, "%s: ", prompt); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal
// and falls back to a plain line otherwise.
func (a *App) promptPassword(r *bufio.Reader, prompt string) (string, error) {
	f, ok := a.stdinFile()
	if !ok || !isTerminal(int(f.Fd())) {
		return promptLine(r, a.errOut, prompt)
	}

	fmt.Fprintf(a.errOut, "%s: ", prompt)
	pw, err := readPassword(int(f.Fd()))
	fmt.Fprintln(a.errOut)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// fill prompts for every empty value in order.
func (a *App) fill(fields ...*promptField) error {
	var r *bufio.Reader
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		if r == nil {
			r = bufio.NewReader(a.in)
		}
		var err error
		if f.secret {
			*f.value, err = a.promptPassword(r, f.label)
		} else {
			*f.value, err = promptLine(r, a.errOut, f.label)
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", strings.ToLower(f.label), err)
		}
	}
	return nil
}

type promptField struct {
	label  string
	value  *string
	secret bool
}

func field(label string, value *string) *promptField {
	return &promptField{label: label, value: value}
}

func secret(label string, value *string) *promptField {
	return &promptField{label: label, value: value, secret: true}
}
