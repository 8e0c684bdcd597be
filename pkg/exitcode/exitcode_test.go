package exitcode

import "testing"

func TestString(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{ConfigError, "Configuration error"},
		{ValidationError, "Validation error"},
		{FileSystemError, "File system error"},
		{NetworkError, "Network error"},
		{SchemaError, "Unsupported manifest schema"},
		{99, "Unknown error"},
	}
	for _, c := range cases {
		if got := String(c.code); got != c.want {
			t.Errorf("String(%d) = %q, want %q", c.code, got, c.want)
		}
	}
}

func TestCodesAreDistinct(t *testing.T) {
	codes := []int{Success, GeneralError, ConfigError, ValidationError, FileSystemError, NetworkError, SchemaError}
	seen := make(map[int]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate exit code %d", c)
		}
		seen[c] = true
	}
}
