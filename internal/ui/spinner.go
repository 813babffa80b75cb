package ui

import (
	"context"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
)

var spinnerDisabled bool

// DisableSpinner turns spinners off, e.g. when debug logs go to the terminal.
func DisableSpinner(v bool) {
	spinnerDisabled = v
}

// WithSpinner runs fn with a spinner. In CI mode, or when stdout is not a
// terminal, runs without spinner. It returns only after fn has returned.
func WithSpinner(ctx context.Context, title string, fn func(context.Context) error) error {
	if spinnerDisabled || IsCI() || !isatty.IsTerminal(os.Stdout.Fd()) {
		return fn(ctx)
	}
	return runWithSpinner(ctx, spinner.New().Title(title), fn)
}

func runWithSpinner(ctx context.Context, s *spinner.Spinner, fn func(context.Context) error) error {
	done := make(chan struct{})
	var fnErr error
	go func() {
		defer close(done)
		fnErr = fn(ctx)
	}()

	spinErr := s.Context(ctx).
		ActionWithErr(func(ctx context.Context) error {
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}).
		Run()

	// The spinner stops on cancellation while fn may still be unwinding.
	<-done
	if fnErr != nil {
		return fnErr
	}
	return spinErr
}
