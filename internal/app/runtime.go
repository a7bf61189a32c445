package app

import (
	"os"
	"sync"
	"sync/atomic"
)

// TestModeEnv disables process startup side effects when set to "1".
const TestModeEnv = "SOIT_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

// InTestMode reports whether the binaries should skip runtime startup. The
// environment is read once per process.
func InTestMode() bool {
	testModeOnce.Do(func() {
		testModeFlag.Store(os.Getenv(TestModeEnv) == "1")
	})
	return testModeFlag.Load()
}
