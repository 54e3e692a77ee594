package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/learncore/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored records as JSON",
		Long:  "Export documents, cards and sessions as a JSON array. Filter by namespace with -n.",
		Run:   runExport,
	}

	cmd.Flags().StringSliceP("ns", "n", nil, "Namespaces to export (documents, cards, sessions)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	namespaces, _ := cmd.Flags().GetStringSlice("ns")

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	entries, err := store.ExportAll(cmd.Context(), kv, namespaces...)
	if err != nil {
		exitErr("export", err)
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	printJSON(cmd, entries)
}
