package config

const ConfigFile = "gopm.yml"

const (
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"
)

const (
	DefaultGitHubURL = "https://api.github.com"
	DefaultGitLabURL = "https://gitlab.com"
	DefaultLanguage  = "GDScript"
	DefaultPerPage   = 10
)

// GitConfig selects the git executable.
type GitConfig struct {
	Binary string `yaml:"binary,omitempty"`
}

// SearchConfig lists the enabled search providers and their settings.
type SearchConfig struct {
	Providers []string       `yaml:"providers"`
	GitHub    ProviderConfig `yaml:"github"`
	GitLab    ProviderConfig `yaml:"gitlab"`
}

// ProviderConfig holds connection settings for one search provider.
type ProviderConfig struct {
	URL      string `yaml:"url"`
	Token    string `yaml:"token,omitempty"`
	Language string `yaml:"language,omitempty"`
	PerPage  int    `yaml:"per_page,omitempty"`
}
