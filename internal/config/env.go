package config

import "strings"

// Environment holds the process-level switches read from the environment.
type Environment struct {
	Debug   bool
	NoColor bool
	CI      bool
}

// ApplyEnv overrides c with GOPM_* variables and returns the switches that are
// not part of the file format. getenv is usually os.Getenv.
func ApplyEnv(c *Config, getenv func(string) string) Environment {
	if token := firstSet(getenv, "GOPM_GITHUB_TOKEN", "GITHUB_TOKEN"); token != "" {
		c.Search.GitHub.Token = token
	}
	if token := getenv("GOPM_GITLAB_TOKEN"); token != "" {
		c.Search.GitLab.Token = token
	}
	if mode := getenv("GOPM_DELETE_MODE"); mode != "" {
		c.DeleteMode = strings.ToLower(mode)
	}

	return Environment{
		Debug:   truthy(getenv("GOPM_DEBUG")),
		NoColor: truthy(getenv("GOPM_NO_COLOR")) || getenv("NO_COLOR") != "",
		CI:      truthy(firstSet(getenv, "GOPM_CI", "CI")),
	}
}

func firstSet(getenv func(string) string, names ...string) string {
	for _, n := range names {
		if v := getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}
