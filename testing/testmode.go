// Package testing switches the binaries into test mode when imported by a
// test, so that importing a main-adjacent package never dials Redis, Postgres
// or Gotenberg.
package testing

import (
	"os"
	"sync"
)

var once sync.Once

// Defaults applied when a test process has not set them.
var testEnv = map[string]string{
	"ODYSSEY_TEST_MODE": "1",
	"GOTENBERG_URL":     "http://127.0.0.1:0",
	"LOG_FORMAT":        "json",
	"LOG_LEVEL":         "warn",
}

func ensureTestMode() {
	once.Do(func() {
		for key, value := range testEnv {
			if key == "ODYSSEY_TEST_MODE" || os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}
