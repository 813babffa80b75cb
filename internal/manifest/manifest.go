package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the manifest file at a project (or dependency) root.
const FileName = "godotmodules.txt"

// LatestAlias is a version placeholder meaning "whatever the default branch points at".
const LatestAlias = "latest"

// Dependency is a single manifest record.
type Dependency struct {
	URI     string
	Version string
}

// Name returns the name derived from the URI. It is used as the clone directory
// name and as the display identifier.
func (d Dependency) Name() string {
	return NameFromURI(d.URI)
}

// Pinned reports whether Version names a concrete revision that has to be
// checked out after cloning.
func (d Dependency) Pinned() bool {
	v := strings.TrimSpace(d.Version)
	return v != "" && !strings.EqualFold(v, LatestAlias)
}

func (d Dependency) String() string {
	return d.URI + " " + d.Version
}

// NameFromURI derives a dependency name from a repository location.
//
//	https://github.com/user/repo.git  -> repo
//	git@github.com:user/repo.git      -> repo
//	/path/to/repo/.git                -> repo
//	/path/to/repo                     -> repo
func NameFromURI(uri string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(uri), `/\`)
	segments := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(segments) == 0 {
		return ""
	}

	last := segments[len(segments)-1]
	if last == ".git" && len(segments) > 1 {
		return segments[len(segments)-2]
	}

	// scp-like remotes: git@host:repo.git
	if len(segments) == 1 {
		if i := strings.LastIndex(last, ":"); i >= 0 && i < len(last)-1 {
			last = last[i+1:]
		}
	}

	if i := strings.LastIndex(last, "."); i > 0 {
		return last[:i]
	}
	return last
}

// ParseError is returned when a manifest line is malformed.
type ParseError struct {
	Source string
	Line   int
	Text   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: expected \"<uri> <version>\", got %q", e.Source, e.Line, e.Text)
}

// Path returns the manifest path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Exists checks whether dir contains a manifest file.
func Exists(dir string) bool {
	info, err := os.Stat(Path(dir))
	return err == nil && !info.IsDir()
}

// Load reads the manifest in dir. A missing file yields an empty list.
func Load(dir string) ([]Dependency, error) {
	path := Path(dir)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse reads manifest records from r. source is only used in error messages.
func Parse(r io.Reader, source string) ([]Dependency, error) {
	var deps []Dependency

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, &ParseError{Source: source, Line: lineNo, Text: line}
		}
		deps = append(deps, Dependency{URI: fields[0], Version: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}

	return deps, nil
}

// Format renders deps in manifest form, one "uri version" line per record.
// Blank lines accepted by Parse are not reproduced, so a round trip only
// preserves files that contain none.
func Format(deps []Dependency) []byte {
	var buf bytes.Buffer
	for _, d := range deps {
		buf.WriteString(d.URI)
		buf.WriteByte(' ')
		buf.WriteString(d.Version)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Save overwrites the manifest in dir. The file is written next to the target
// and renamed into place.
func Save(dir string, deps []Dependency) error {
	for i, d := range deps {
		if strings.TrimSpace(d.URI) == "" || strings.ContainsAny(d.URI, " \t\n") {
			return fmt.Errorf("dependency %d: invalid uri %q", i, d.URI)
		}
		if strings.TrimSpace(d.Version) == "" || strings.ContainsAny(d.Version, " \t\n") {
			return fmt.Errorf("dependency %s: invalid version %q", d.Name(), d.Version)
		}
	}

	path := Path(dir)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, Format(deps), 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("saving manifest: %w", err)
	}

	return nil
}

// IndexOf returns the position of the dependency called name, or -1.
func IndexOf(deps []Dependency, name string) int {
	for i, d := range deps {
		if d.Name() == name {
			return i
		}
	}
	return -1
}
