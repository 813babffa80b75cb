package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/company/gopm/internal/config"
	"github.com/company/gopm/internal/detect"
	"github.com/company/gopm/internal/manifest"
	"github.com/company/gopm/internal/resolver"
)

func (a *App) newDoctorCmd() *cobra.Command {
	var writeConfig bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDoctor(cmd.Context(), writeConfig)
		},
	}

	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "write a "+config.ConfigFile+" with the default settings if none exists")
	return cmd
}

func (a *App) runDoctor(ctx context.Context, writeConfig bool) error {
	allOK := true

	// 0. Godot project
	if gp, err := detect.FindProject(a.projectDir); err != nil {
		a.output.Error("Could not read %s: %v", detect.ProjectFile, err)
		allOK = false
	} else if gp == nil {
		a.output.Warning("No %s in %s; addons are installed relative to it", detect.ProjectFile, a.projectDir)
	} else if gp.MajorVersion() != "" {
		a.output.Success("Godot %s project %q", gp.MajorVersion(), gp.Name)
	} else {
		a.output.Success("Godot project %q", gp.Name)
	}

	// 1. Config file
	if config.ConfigExists(a.projectDir) {
		a.output.Success("%s found", config.ConfigFile)
	} else if writeConfig {
		if err := config.SaveConfig(a.projectDir, config.Default()); err != nil {
			a.output.Error("Could not write %s: %v", config.ConfigFile, err)
			allOK = false
		} else {
			a.output.Success("Wrote %s with default settings", config.ConfigFile)
		}
	} else {
		a.output.Info("No %s, using defaults", config.ConfigFile)
	}

	// 2. Git binary
	if a.vcs != nil {
		a.output.Success("git client configured")
	} else if path, err := exec.LookPath(a.config.Git.Binary); err == nil {
		a.output.Success("git found at %s", path)
	} else {
		a.output.Error("git binary %q not found: %v", a.config.Git.Binary, err)
		allOK = false
	}

	// 3. Manifest
	deps, err := manifest.Load(a.projectDir)
	switch {
	case err != nil:
		a.output.Error("%s invalid: %v", manifest.FileName, err)
		allOK = false
	case !manifest.Exists(a.projectDir):
		a.output.Info("No %s yet; run: gopm install <package>", manifest.FileName)
	default:
		a.output.Success("%s lists %d packages", manifest.FileName, len(deps))
	}

	// 4. Addons folder
	addonsPath := filepath.Join(a.projectDir, resolver.AddonsDir)
	if entries, err := os.ReadDir(addonsPath); err == nil {
		a.output.Success("%s/ folder exists with %d addons", resolver.AddonsDir, len(entries))
	} else if len(deps) > 0 {
		a.output.Error("%s/ folder missing; run: gopm update", resolver.AddonsDir)
		allOK = false
	}

	// 5. Search providers reachable (use a short timeout so doctor doesn't hang)
	providerCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, p := range a.searchProviders() {
		if _, err := p.Search(providerCtx, "godot"); err != nil {
			a.output.Error("Search provider %s unreachable: %v", p.Name(), err)
			allOK = false
		} else {
			a.output.Success("Search provider %s reachable", p.Name())
		}
	}

	if allOK {
		fmt.Fprintln(a.output.Writer())
		a.output.Success("Everything looks good!")
	}

	return nil
}
