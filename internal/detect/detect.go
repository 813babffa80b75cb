// Package detect recognizes Godot projects.
package detect

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ProjectFile marks the root of a Godot project.
const ProjectFile = "project.godot"

// GodotProject describes the project.godot found in a directory.
type GodotProject struct {
	Root string
	Name string
	// ConfigVersion is 4 for Godot 3.x and 5 for Godot 4.x.
	ConfigVersion int
	// EngineVersion is the major.minor feature tag, empty for Godot 3.x projects.
	EngineVersion string
}

// MajorVersion returns the engine's major version, derived from the feature tag
// or, failing that, from the config format.
func (p *GodotProject) MajorVersion() string {
	if major := extractMajorVersion(p.EngineVersion); major != "" {
		return major
	}
	switch p.ConfigVersion {
	case 4:
		return "3"
	case 5:
		return "4"
	}
	return ""
}

func extractMajorVersion(version string) string {
	version = strings.TrimLeft(strings.TrimSpace(version), "v")

	var major strings.Builder
	for _, r := range version {
		if r < '0' || r > '9' {
			break
		}
		major.WriteRune(r)
	}
	return major.String()
}

var featureVersion = regexp.MustCompile(`"(\d+\.\d+)"`)

// FindProject reads dir/project.godot. It returns nil, nil when dir is not a
// Godot project.
func FindProject(dir string) (*GodotProject, error) {
	f, err := os.Open(filepath.Join(dir, ProjectFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	p := &GodotProject{Root: dir}
	section := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case section == "" && key == "config_version":
			if v, err := strconv.Atoi(value); err == nil {
				p.ConfigVersion = v
			}
		case section == "application" && key == "config/name":
			p.Name = strings.Trim(value, `"`)
		case section == "application" && key == "config/features":
			if m := featureVersion.FindStringSubmatch(value); m != nil {
				p.EngineVersion = m[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", ProjectFile, err)
	}
	return p, nil
}
