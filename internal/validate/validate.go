// Package validate holds the checks behind lorademo-validate. Every check is
// an independent predicate that reports failure instead of crashing when the
// artifacts it looks at are missing.
package validate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Check is one named predicate. Run writes human-readable progress to w.
type Check struct {
	Name string
	Run  func(ctx context.Context, w io.Writer) bool
}

// Run executes checks in order and returns how many passed. A panicking check
// counts as a failure and does not stop the rest.
func Run(ctx context.Context, w io.Writer, checks []Check) (passed, total int) {
	fmt.Fprintln(w, "Running LoRA Demo Validation Tests")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	for _, c := range checks {
		ok := runOne(ctx, w, c)
		slog.Debug("validate: check finished", "check", c.Name, "passed", ok)
		if ok {
			passed++
		}
		fmt.Fprintln(w)
	}
	total = len(checks)
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "Test Results: %d/%d passed\n", passed, total)
	if passed == total {
		fmt.Fprintln(w, "All tests passed! Demo is ready to use.")
	} else {
		fmt.Fprintln(w, "Some tests failed. Check the output above for details.")
	}
	return passed, total
}

func runOne(ctx context.Context, w io.Writer, c Check) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("validate: check panicked", "check", c.Name, "panic", r)
			fail(w, "Test failed with exception: %v", r)
			ok = false
		}
	}()
	fmt.Fprintf(w, "Testing %s...\n", c.Name)
	return c.Run(ctx, w)
}

// ExitCode is 0 when every check passed and 1 otherwise.
func ExitCode(passed, total int) int {
	if passed == total {
		return 0
	}
	return 1
}

func pass(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  PASS "+format+"\n", args...)
}

func fail(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  FAIL "+format+"\n", args...)
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  WARN "+format+"\n", args...)
}
