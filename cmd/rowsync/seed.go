package main

import (
	"github.com/spf13/cobra"

	"github.com/vmunix/rowsync/internal/render"
	"github.com/vmunix/rowsync/internal/state"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Print the seed snapshot",
	Args:  cobra.NoArgs,
	RunE:  runSeedCmd,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeedCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the store stamps its first snapshot with version 1
	snap := state.NewSnapshot(1, cfg.Seed.Items())
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), snap)
	}
	render.WriteList(cmd.OutOrStdout(), snap.Items())
	return nil
}
