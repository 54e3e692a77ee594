package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/learncore/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	stats, err := store.CollectStats(cmd.Context(), kv, cfg.Store.Backend, timeNow())
	if err != nil {
		exitErr("stats", err)
	}
	printJSON(cmd, stats)
}
