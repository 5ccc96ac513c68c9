//go:build release

package assert

import "fmt"

// StrictMode has no effect in release builds.
var StrictMode = false

// Check returns an error for a failed invariant without logging or panicking.
func Check(condition bool, msg string, args ...any) error {
	if condition {
		return nil
	}
	return fmt.Errorf("assertion failed: %s", fmt.Sprintf(msg, args...))
}

func InRange(val, min, max int, name string) error {
	return Check(val >= min && val <= max, "%s (%d) out of range [%d, %d]", name, val, min, max)
}
