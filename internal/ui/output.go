package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Output handles styled terminal output.
type Output struct {
	out     io.Writer
	err     io.Writer
	noColor bool
}

// NewOutput creates an Output writing to stdout and stderr.
func NewOutput() *Output {
	return NewOutputTo(os.Stdout, os.Stderr)
}

// NewOutputTo creates an Output writing to the given streams.
func NewOutputTo(out, err io.Writer) *Output {
	return &Output{out: out, err: err}
}

// SetNoColor disables colored output.
func (o *Output) SetNoColor(v bool) {
	o.noColor = v
}

// NoColor reports whether colored output is disabled.
func (o *Output) NoColor() bool {
	return o.noColor
}

// Writer returns the stream regular output goes to.
func (o *Output) Writer() io.Writer {
	return o.out
}

// Success prints a success message with a green checkmark.
func (o *Output) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(o.out, "OK %s\n", msg)
	} else {
		fmt.Fprintf(o.out, "\033[32m✓\033[0m %s\n", msg)
	}
}

// Error prints an error message with a red X.
func (o *Output) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(o.err, "FAIL %s\n", msg)
	} else {
		fmt.Fprintf(o.err, "\033[31m✗\033[0m %s\n", msg)
	}
}

// Warning prints a warning message with a yellow exclamation.
func (o *Output) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(o.err, "WARN %s\n", msg)
	} else {
		fmt.Fprintf(o.err, "\033[33m!\033[0m %s\n", msg)
	}
}

// Info prints an informational message.
func (o *Output) Info(format string, args ...any) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

// Println prints a line to stdout.
func (o *Output) Println(format string, args ...any) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

// Table prints a simple aligned table.
func (o *Output) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		fmt.Fprintf(o.out, "%-*s  ", widths[i], h)
	}
	fmt.Fprintln(o.out)

	for i, w := range widths {
		fmt.Fprintf(o.out, "%s", strings.Repeat("-", w))
		if i < len(widths)-1 {
			fmt.Fprint(o.out, "  ")
		}
	}
	fmt.Fprintln(o.out)

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(o.out, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(o.out)
	}
}
