package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/learncore/internal/chunker"
	"github.com/rcliao/learncore/internal/retriever"
	"github.com/rcliao/learncore/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "retrieve [query]",
		Short: "Assemble grounding context from a document",
		Long:  "Score child spans of a stored document against the query and return the owning parent spans.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRetrieve,
	}

	cmd.Flags().String("doc", "", "Document id (required)")
	cmd.Flags().Int("children", 0, "Top child spans to consider (default from config)")
	cmd.Flags().Int("parents", 0, "Max parent spans returned (default from config)")
	cmd.Flags().Bool("explain", false, "Output ranked hits alongside the context")
	cmd.MarkFlagRequired("doc")

	RootCmd.AddCommand(cmd)
}

func runRetrieve(cmd *cobra.Command, args []string) {
	docID, _ := cmd.Flags().GetString("doc")
	children, _ := cmd.Flags().GetInt("children")
	parents, _ := cmd.Flags().GetInt("parents")
	explain, _ := cmd.Flags().GetBool("explain")
	query := strings.Join(args, " ")

	opts := retrieveOptions()
	if children > 0 {
		opts.TopChildren = children
	}
	if parents > 0 {
		opts.TopParents = parents
	}

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	doc, err := store.NewDocuments(kv).Get(cmd.Context(), docID)
	if err != nil {
		exitErr("retrieve", err)
	}
	idx, err := chunker.Build(doc, chunkOptions())
	if err != nil {
		exitErr("retrieve", err)
	}

	grounding := retriever.Retrieve(idx, query, opts)

	if !explain {
		fmt.Fprintln(cmd.OutOrStdout(), grounding)
		return
	}

	hits := retriever.Rank(idx, query, opts)
	printJSON(cmd, map[string]any{
		"terms":    retriever.Terms(query),
		"hits":     hits,
		"parents":  retriever.Parents(hits, opts),
		"fallback": len(hits) == 0,
		"context":  grounding,
	})
}
