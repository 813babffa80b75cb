package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/company/gopm/internal/resolver"
	"github.com/company/gopm/internal/vcs"
)

var (
	colorCyan = lipgloss.Color("36")
	colorRed  = lipgloss.Color("167")
	colorDim  = lipgloss.Color("240")
	colorBlue = lipgloss.Color("75")
)

type treeStyles struct {
	name    lipgloss.Style
	version lipgloss.Style
	uri     lipgloss.Style
	addon   lipgloss.Style
	muted   lipgloss.Style
	fail    lipgloss.Style
}

func newTreeStyles(w io.Writer, noColor bool) treeStyles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return treeStyles{
		name:    r.NewStyle().Bold(true).Foreground(colorCyan),
		version: r.NewStyle().Foreground(colorDim),
		uri:     r.NewStyle().Foreground(colorBlue),
		addon:   r.NewStyle().Foreground(colorCyan),
		muted:   r.NewStyle().Foreground(colorDim),
		fail:    r.NewStyle().Bold(true).Foreground(colorRed),
	}
}

// ShortVersion returns the first eight characters of a version.
func ShortVersion(v string) string {
	if len(v) > 8 {
		return v[:8]
	}
	return v
}

// FormatError renders err for the user. Git failures show the command and
// its stderr on an indented line.
func FormatError(err error) string {
	var gitErr *vcs.Error
	if errors.As(err, &gitErr) {
		detail := gitErr.Stderr
		if detail == "" && gitErr.Err != nil {
			detail = gitErr.Err.Error()
		}
		return fmt.Sprintf("Error running Git command \"%s\":\n\t%s", gitErr.Command(), detail)
	}
	return err.Error()
}

// RenderTree prints a resolution tree, one tab of indentation per depth.
func RenderTree(w io.Writer, n *resolver.Node, noColor bool) {
	renderNode(w, n, newTreeStyles(w, noColor))
}

func renderNode(w io.Writer, n *resolver.Node, s treeStyles) {
	indent := strings.Repeat("\t", n.Depth)
	fmt.Fprintf(w, "%s%s version %s from %s\n",
		indent,
		s.name.Render("["+n.Dependency.Name()+"]"),
		s.version.Render(ShortVersion(n.Dependency.Version)),
		s.uri.Render(n.Dependency.URI))

	inner := indent + "\t"
	switch {
	case n.Cycle != nil:
		fmt.Fprintf(w, "%s%s\n", inner, s.muted.Render("(circular dependency, skipped: "+strings.Join(n.Cycle, " → ")+")"))
		return
	case n.Err != nil:
		msg := strings.ReplaceAll(FormatError(n.Err), "\n", "\n"+inner)
		fmt.Fprintf(w, "%s%s %s\n", inner, s.fail.Render("FAIL"), msg)
		return
	}

	for _, a := range n.Addons {
		fmt.Fprintf(w, "%sAddon %s\n", inner, s.addon.Render("["+a.Name+"]"))
	}
	if len(n.Addons) == 0 {
		fmt.Fprintf(w, "%s%s\n", inner, s.muted.Render("Package contains no addons."))
	}
	for _, c := range n.Children {
		renderNode(w, c, s)
	}
}
