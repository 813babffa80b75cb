package detect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindProjectGodot4(t *testing.T) {
	dir := t.TempDir()
	content := `; Engine configuration file.

config_version=5

[application]

config/name="Space Miner"
run/main_scene="res://main.tscn"
config/features=PackedStringArray("4.2", "Forward Plus")

[editor_plugins]

enabled=PackedStringArray("res://addons/gut/plugin.cfg")
`
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := FindProject(dir)
	if err != nil {
		t.Fatalf("FindProject() error: %v", err)
	}
	if p.Name != "Space Miner" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.ConfigVersion != 5 {
		t.Errorf("ConfigVersion = %d", p.ConfigVersion)
	}
	if p.EngineVersion != "4.2" {
		t.Errorf("EngineVersion = %q", p.EngineVersion)
	}
	if p.MajorVersion() != "4" {
		t.Errorf("MajorVersion() = %q", p.MajorVersion())
	}
}

func TestFindProjectGodot3(t *testing.T) {
	dir := t.TempDir()
	content := "config_version=4\n\n[application]\n\nconfig/name=\"Old Game\"\n"
	os.WriteFile(filepath.Join(dir, ProjectFile), []byte(content), 0644)

	p, err := FindProject(dir)
	if err != nil {
		t.Fatalf("FindProject() error: %v", err)
	}
	if p.EngineVersion != "" {
		t.Errorf("EngineVersion = %q, want empty", p.EngineVersion)
	}
	if p.MajorVersion() != "3" {
		t.Errorf("MajorVersion() = %q, want 3", p.MajorVersion())
	}
}

func TestFindProjectMissing(t *testing.T) {
	p, err := FindProject(t.TempDir())
	if err != nil || p != nil {
		t.Errorf("FindProject() = %v, %v; want nil, nil", p, err)
	}
}

func TestExtractMajorVersion(t *testing.T) {
	tests := map[string]string{
		"4.2":    "4",
		"v3.5":   "3",
		"":       "",
		"beta":   "",
		"10.0.1": "10",
	}
	for in, want := range tests {
		if got := extractMajorVersion(in); got != want {
			t.Errorf("extractMajorVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
