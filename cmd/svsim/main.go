// Command svsim is the CLI front end for the simulator: enumerating a
// combinational module's truth table, running a module against its
// test-case JSON, or walking a directory of modules in parallel.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/driver"
	"github.com/jwd83/svsim/pkg/module"
	"github.com/jwd83/svsim/pkg/report"
	"github.com/jwd83/svsim/pkg/truthtable"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "svsim",
		Short: "Cycle-based simulator for an educational SystemVerilog subset",
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "accepted but changes no output: truthtable always prints every row, run always prints the summary")

	rootCmd.AddCommand(
		newTruthtableCmd(&verbose),
		newRunCmd(&verbose),
		newCacheClearCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newTruthtableCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "truthtable <module.sv>",
		Short: "Enumerate a combinational module's truth table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svPath := args[0]
			cache := module.New()
			dir := filepath.Dir(svPath)
			name := base(svPath)

			entry, err := cache.Resolve(name, dir)
			if err != nil {
				return err
			}
			if entry.AST.HasAlwaysFf() {
				return fmt.Errorf("%s: module %q is sequential (has always_ff); use `svsim run` instead", svPath, name)
			}

			rows, err := truthtable.Enumerate(entry, cache)
			if err != nil {
				return err
			}

			cost, _ := cache.GateCost(entry)
			fmt.Printf("module %s: %d rows, primitive-gate count %d\n", name, len(rows), cost)
			for _, row := range rows {
				fmt.Printf("  %s -> %s\n", formatRow(row.Inputs), formatRow(row.Outputs))
			}
			return nil
		},
	}
}

func newRunCmd(verbose *bool) *cobra.Command {
	var workers int
	var dirMode bool

	cmd := &cobra.Command{
		Use:   "run <module.sv|dir> [cases.json]",
		Short: "Run a module's test-case JSON, or a whole directory in parallel",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := module.New()
			table := report.NewTable()

			if dirMode || len(args) == 1 {
				dir := args[0]
				if err := driver.RunDir(dir, workers, cache, table); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			} else {
				if err := driver.RunFile(args[0], args[1], cache, table); err != nil {
					return err
				}
			}

			fmt.Print(table.Summary())
			if !table.AllPassed() {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers for directory mode (0 = NumCPU)")
	cmd.Flags().BoolVar(&dirMode, "dir", false, "treat the single argument as a directory to walk")
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cache-clear",
		Short: "No-op placeholder: the module cache is process-local, so there is nothing to clear across runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Each subcommand builds its own cache via module.New();
			// Cache.Clear is for callers that reuse one cache, such as tests.
			fmt.Println("module cache is per-invocation; nothing to clear")
			return nil
		},
	}
}

func base(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}

// formatRow renders a signal->value map in sorted-name order, so
// truthtable output is stable across runs.
func formatRow(values map[string]bitvec.Value) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%s", name, values[name])
	}
	return strings.Join(parts, " ")
}
