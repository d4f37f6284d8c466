package main

import (
	"fmt"
	"goCrashFilter/internal/crashfilter"
	"goCrashFilter/pkg/csvdb"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newCatalogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the files written to the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, nil, opts)
			if err != nil {
				return err
			}
			return runCatalog(cmd, cfg)
		},
	}
}

func runCatalog(cmd *cobra.Command, cfg *crashfilter.Config) error {
	c, err := crashfilter.OpenCatalog(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	entries := c.Entries()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No files recorded in %s\n", c.Path())
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Name)
		fmt.Fprintf(out, "  path:    %s\n", e.Path)
		fmt.Fprintf(out, "  rows:    %d\n", e.Rows)
		fmt.Fprintf(out, "  columns: %d\n", len(e.Columns))
		if len(e.Labels) > 0 {
			fmt.Fprintf(out, "  %s\n", formatLabels(e))
		}
	}
	return nil
}

func formatLabels(e *csvdb.CatalogEntry) string {
	keys := make([]string, 0, len(e.Labels))
	for k := range e.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, e.Labels[k])
	}
	return strings.Join(parts, " ")
}
