package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Odyssey admin operator tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newJobsCmd())
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
