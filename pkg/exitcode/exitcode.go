// Package exitcode provides standardized exit codes for the assetmanifest CLI.
package exitcode

const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	ValidationError = 3
	FileSystemError = 4
	NetworkError    = 5
	SchemaError     = 6
)

// String returns a human-readable description of the exit code.
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	case NetworkError:
		return "Network error"
	case SchemaError:
		return "Unsupported manifest schema"
	default:
		return "Unknown error"
	}
}
