// Package testing switches the process into test mode when imported, so
// packages that build binaries skip runtime startup under go test.
package testing

import "os"

func init() {
	_ = os.Setenv("SOIT_TEST_MODE", "1")
	if os.Getenv("REPORT_SOURCE") == "" {
		_ = os.Setenv("REPORT_SOURCE", "none")
	}
}
