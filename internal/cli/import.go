package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/learncore/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import records from JSON",
		Long:  "Import records from JSON on stdin. Expects the format produced by export; existing keys are overwritten.",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var entries []store.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		exitErr("parse json", err)
	}

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	imported, err := store.Import(cmd.Context(), kv, entries)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d}`+"\n", imported)
}
