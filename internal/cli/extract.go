package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/learncore/internal/extract"
)

func init() {
	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract the JSON value from generated text",
		Long:  "Recover the JSON object or array embedded in free-form generated text (arg or stdin). Fails with the raw text when none parses.",
		Run:   runExtract,
	}

	RootCmd.AddCommand(cmd)
}

func runExtract(cmd *cobra.Command, args []string) {
	text, err := readContent(args)
	if err != nil {
		exitErr("read stdin", err)
	}

	v, err := extract.Structured(text)
	if err != nil {
		var mErr *extract.MalformedOutputError
		if errors.As(err, &mErr) {
			printJSON(cmd, map[string]any{"ok": false, "error": err.Error(), "raw": mErr.Raw})
			os.Exit(2)
		}
		exitErr("extract", fmt.Errorf("unexpected: %w", err))
	}
	printJSON(cmd, v)
}
