// Command adminctl is the operator tool for the admin server: offline payload
// diagnostics and manual control of background jobs.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
