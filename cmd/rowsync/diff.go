package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/rowsync/internal/item"
	"github.com/vmunix/rowsync/internal/reconcile"
	"github.com/vmunix/rowsync/internal/render"
)

var diffCmd = &cobra.Command{
	Use:   "diff OLD.json NEW.json",
	Short: "Diff two snapshot files",
	Long: `Print the edit script that turns one list into another.

Each file holds a JSON array of items:
  [{"kind":"downloadable","id":222,"status":"to_download"},{"kind":"empty","id":0}]

Examples:
  rowsync diff before.json after.json
  rowsync diff before.json after.json --json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiffCmd,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

// diffOutput is the --json form of a diff.
type diffOutput struct {
	reconcile.Result
	Ops []reconcile.Op `json:"ops"`
}

func runDiffCmd(cmd *cobra.Command, args []string) error {
	oldItems, err := readListFile(args[0])
	if err != nil {
		return err
	}
	newItems, err := readListFile(args[1])
	if err != nil {
		return err
	}

	res := reconcile.Diff(oldItems, newItems)
	ops := res.Ops()

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, newDiffOutput(res, ops))
	}
	writeDiff(out, res, ops)
	return nil
}

func readListFile(path string) ([]item.ListItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	items, err := item.DecodeList(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

func writeDiff(w io.Writer, res reconcile.Result, ops []reconcile.Op) {
	if res.Empty() {
		fmt.Fprintln(w, "No changes")
		return
	}
	fmt.Fprintf(w, "%d inserted, %d removed, %d moved, %d changed\n\n",
		len(res.Inserted), len(res.Removed), len(res.Moved), len(res.Changed))
	for _, op := range ops {
		switch op.Kind {
		case reconcile.OpRemove:
			fmt.Fprintf(w, "  %-7s @%d\n", op.Kind, op.Index)
		case reconcile.OpMove:
			fmt.Fprintf(w, "  %-7s @%d <- @%d  %s\n", op.Kind, op.Index, op.From, render.Label(op.Item))
		default:
			fmt.Fprintf(w, "  %-7s @%d  %s\n", op.Kind, op.Index, render.Label(op.Item))
		}
	}
}

// newDiffOutput encodes empty lists as [] rather than null.
func newDiffOutput(res reconcile.Result, ops []reconcile.Op) diffOutput {
	return diffOutput{
		Result: reconcile.Result{
			Inserted: nonNil(res.Inserted),
			Removed:  nonNil(res.Removed),
			Moved:    nonNil(res.Moved),
			Changed:  nonNil(res.Changed),
		},
		Ops: nonNil(ops),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
