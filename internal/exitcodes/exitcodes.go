package exitcodes

// Process exit codes used by the CLI.
const (
	Success      = 0
	GeneralError = 1
	UsageError   = 2
	ConfigError  = 3
	NotFound     = 4
	VCSError     = 5
	Conflict     = 6
)
