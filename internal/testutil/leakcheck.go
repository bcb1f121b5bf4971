// Package testutil provides fixtures and goroutine leak checks for tests.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// fyneTopFunctions are goroutines the fyne drivers keep for the life of the process.
var fyneTopFunctions = []string{
	"fyne.io/fyne/v2/internal/driver/glfw.(*gLDriver).runGL.func1",
	"fyne.io/fyne/v2/internal/driver/glfw.(*window).RunEventQueue",
	"fyne.io/fyne/v2/internal/animation.(*Runner).runAnimations",
}

// VerifyNoLeaks is deferred by tests that start ring producers, file pumps or
// the presenter ticker. It fails the test if any goroutine outlives it.
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, opts...)
}

// IgnoreFyneGoroutines returns options for tests that create a fyne test app.
func IgnoreFyneGoroutines() []goleak.Option {
	opts := make([]goleak.Option, 0, len(fyneTopFunctions)+1)
	for _, fn := range fyneTopFunctions {
		opts = append(opts, goleak.IgnoreTopFunction(fn))
	}
	return append(opts, goleak.IgnoreAnyFunction("fyne.io/fyne/v2"))
}
