package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/learncore/internal/chunker"
	"github.com/rcliao/learncore/internal/model"
	"github.com/rcliao/learncore/internal/store"
)

func init() {
	docCmd := &cobra.Command{
		Use:   "doc",
		Short: "Manage study documents",
	}

	putCmd := &cobra.Command{
		Use:   "put [text]",
		Short: "Store a document",
		Long:  "Store a document. Text can be a positional arg or piped via stdin.",
		Run:   runDocPut,
	}
	putCmd.Flags().String("id", "", "Document id (default: generated)")
	putCmd.Flags().String("title", "", "Document title")

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Retrieve a document",
		Run:   runDocGet,
	}
	getCmd.Flags().String("id", "", "Document id (required)")
	getCmd.MarkFlagRequired("id")

	rmCmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a document",
		Run:   runDocRm,
	}
	rmCmd.Flags().String("id", "", "Document id (required)")
	rmCmd.MarkFlagRequired("id")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List document ids",
		Run:   runDocList,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the parent/child spans of a document",
		Run:   runDocInspect,
	}
	inspectCmd.Flags().String("id", "", "Document id (required)")
	inspectCmd.Flags().Bool("text", false, "Include span text")
	inspectCmd.MarkFlagRequired("id")

	docCmd.AddCommand(putCmd, getCmd, rmCmd, listCmd, inspectCmd)
	RootCmd.AddCommand(docCmd)
}

func runDocPut(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	title, _ := cmd.Flags().GetString("title")

	text, err := readContent(args)
	if err != nil {
		exitErr("read stdin", err)
	}
	if strings.TrimSpace(text) == "" {
		exitErr("doc put", fmt.Errorf("text is required (positional arg or stdin)"))
	}
	if id == "" {
		id = store.NewID()
	}

	doc := model.Document{ID: id, Title: title, Text: text, CreatedAt: time.Now().UTC()}

	// Index up front so bad chunking settings fail before anything is stored.
	idx, err := chunker.Build(doc, chunkOptions())
	if err != nil {
		exitErr("doc put", err)
	}

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	if err := store.NewDocuments(kv).Put(cmd.Context(), doc); err != nil {
		exitErr("doc put", err)
	}

	printJSON(cmd, map[string]any{
		"id":       doc.ID,
		"title":    doc.Title,
		"chars":    len([]rune(doc.Text)),
		"parents":  len(idx.Parents),
		"children": len(idx.Children),
	})
}

func runDocGet(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	doc, err := store.NewDocuments(kv).Get(cmd.Context(), id)
	if err != nil {
		exitErr("doc get", err)
	}
	printJSON(cmd, doc)
}

func runDocRm(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	if err := store.NewDocuments(kv).Delete(cmd.Context(), id); err != nil {
		exitErr("doc rm", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", id)
}

func runDocList(cmd *cobra.Command, args []string) {
	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	ids, err := store.NewDocuments(kv).IDs(cmd.Context())
	if err != nil {
		exitErr("doc list", err)
	}
	if ids == nil {
		ids = []string{}
	}
	printJSON(cmd, ids)
}

func runDocInspect(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	withText, _ := cmd.Flags().GetBool("text")

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	doc, err := store.NewDocuments(kv).Get(cmd.Context(), id)
	if err != nil {
		exitErr("doc inspect", err)
	}
	idx, err := chunker.Build(doc, chunkOptions())
	if err != nil {
		exitErr("doc inspect", err)
	}

	if !withText {
		for i := range idx.Parents {
			idx.Parents[i].Text = ""
		}
		for i := range idx.Children {
			idx.Children[i].Text = ""
		}
	}
	printJSON(cmd, idx)
}
