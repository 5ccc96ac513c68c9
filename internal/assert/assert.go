//go:build !release

package assert

import (
	"fmt"
	"runtime/debug"

	"github.com/vytor/swipequiz/internal/logger"
)

// StrictMode makes failed checks panic. Tests that exercise the error path
// switch it off.
var StrictMode = true

// Check verifies an invariant. A failed check is logged with a stack trace and
// panics in StrictMode; otherwise it is returned as an error.
func Check(condition bool, msg string, args ...any) error {
	if condition {
		return nil
	}

	err := fmt.Errorf("assertion failed: %s", fmt.Sprintf(msg, args...))
	logger.Default().WithPrefix("assert").Error("%v\n%s", err, debug.Stack())

	if StrictMode {
		panic(err)
	}
	return err
}

// InRange checks that val is within [min, max].
func InRange(val, min, max int, name string) error {
	return Check(val >= min && val <= max, "%s (%d) out of range [%d, %d]", name, val, min, max)
}
