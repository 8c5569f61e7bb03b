package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-admin/internal/diagnostics"
)

var errPayloadNotClean = errors.New("payload has missing required fields")

func newInspectCmd() *cobra.Command {
	var (
		schemaName string
		outDir     string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <payload.json>",
		Short: "Check an approval payload for null, empty and malformed fields",
		Long: "Inspect reads a saved approval payload and reports the status of every field.\n" +
			"--schema takes a built-in name (" + strings.Join(diagnostics.BuiltinNames(), ", ") + ") or a YAML schema file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			payload, err := diagnostics.Decode(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			schema, err := resolveSchema(schemaName)
			if err != nil {
				return err
			}

			report := diagnostics.Inspect(payload, schema)
			if outDir == "" {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				path := filepath.Join(outDir, diagnostics.Filename(time.Now()))
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := report.WriteJSON(f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			if strict && len(report.MissingRequired) > 0 {
				return fmt.Errorf("%w: %s", errPayloadNotClean, strings.Join(report.MissingRequired, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaName, "schema", "", "Built-in schema name or path to a YAML schema")
	cmd.Flags().StringVar(&outDir, "out", "", "Write the report into this directory instead of stdout")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when required fields are missing")
	return cmd
}

func resolveSchema(name string) (diagnostics.Schema, error) {
	if name == "" {
		return diagnostics.Schema{Name: "adhoc"}, nil
	}
	if schema, ok := diagnostics.Builtin(name); ok {
		return schema, nil
	}
	if _, err := os.Stat(name); err != nil {
		return diagnostics.Schema{}, fmt.Errorf("unknown schema %q", name)
	}
	return diagnostics.LoadSchemaFile(name)
}
