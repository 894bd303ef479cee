package testutils

import (
	"os"
	"testing"
)

// SetEnv sets environment variables for a test and returns a cleanup
// function that restores the previous values.
func SetEnv(t *testing.T, vars map[string]string) func() {
	t.Helper()

	previous := make(map[string]*string, len(vars))
	for key, value := range vars {
		if old, ok := os.LookupEnv(key); ok {
			v := old
			previous[key] = &v
		} else {
			previous[key] = nil
		}
		os.Setenv(key, value)
	}

	return func() {
		for key, old := range previous {
			if old == nil {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, *old)
			}
		}
	}
}
