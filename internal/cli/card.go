package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/learncore/internal/model"
	"github.com/rcliao/learncore/internal/scheduler"
	"github.com/rcliao/learncore/internal/store"
)

func init() {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Flashcard spaced-repetition scheduling",
	}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Create retention state for a new card",
		Run:   runCardNew,
	}
	newCmd.Flags().String("id", "", "Card id (default: generated)")

	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Record a review and schedule the next one",
		Run:   runCardReview,
	}
	reviewCmd.Flags().String("id", "", "Card id (required)")
	reviewCmd.Flags().IntP("quality", "q", -1, "Recall quality 0-5 (required)")
	reviewCmd.Flags().String("at", "", "Review time, RFC3339 (default: now)")
	reviewCmd.MarkFlagRequired("id")
	reviewCmd.MarkFlagRequired("quality")

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show a card's retention state",
		Run:   runCardGet,
	}
	getCmd.Flags().String("id", "", "Card id (required)")
	getCmd.MarkFlagRequired("id")

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the state each quality would produce",
		Run:   runCardPreview,
	}
	previewCmd.Flags().String("id", "", "Card id (required)")
	previewCmd.MarkFlagRequired("id")

	dueCmd := &cobra.Command{
		Use:   "due",
		Short: "List cards due for review",
		Run:   runCardDue,
	}
	dueCmd.Flags().String("at", "", "Reference time, RFC3339 (default: now)")

	rmCmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a card's retention state",
		Run:   runCardRm,
	}
	rmCmd.Flags().String("id", "", "Card id (required)")
	rmCmd.MarkFlagRequired("id")

	cardCmd.AddCommand(newCmd, reviewCmd, getCmd, previewCmd, dueCmd, rmCmd)
	RootCmd.AddCommand(cardCmd)
}

func runCardNew(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		id = store.NewID()
	}

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	cards := store.NewCards(kv)
	if _, err := cards.Get(cmd.Context(), id); err == nil {
		exitErr("card new", fmt.Errorf("card %s already exists", id))
	}

	st := scheduler.NewState(id, timeNow())
	if err := cards.Put(cmd.Context(), st); err != nil {
		exitErr("card new", err)
	}
	printJSON(cmd, st)
}

func runCardReview(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	quality, _ := cmd.Flags().GetInt("quality")
	atStr, _ := cmd.Flags().GetString("at")

	at, err := parseTime(atStr)
	if err != nil {
		exitErr("card review", err)
	}

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	cards := store.NewCards(kv)
	st, err := cards.Get(cmd.Context(), id)
	if err != nil {
		exitErr("card review", err)
	}

	next, err := scheduler.Schedule(st, quality, at)
	if err != nil {
		exitErr("card review", err)
	}
	if err := cards.Put(cmd.Context(), next); err != nil {
		exitErr("card review", err)
	}

	log.Info("card reviewed",
		zap.String("card", id),
		zap.Int("quality", quality),
		zap.Int("interval_days", next.IntervalDays),
		zap.String("status", string(next.Status)),
	)
	printJSON(cmd, next)
}

func runCardGet(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	st, err := store.NewCards(kv).Get(cmd.Context(), id)
	if err != nil {
		exitErr("card get", err)
	}
	printJSON(cmd, map[string]any{
		"state": st,
		"due":   scheduler.IsDue(st, timeNow()),
	})
}

func runCardPreview(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	st, err := store.NewCards(kv).Get(cmd.Context(), id)
	if err != nil {
		exitErr("card preview", err)
	}
	printJSON(cmd, scheduler.Preview(st, timeNow()))
}

func runCardDue(cmd *cobra.Command, args []string) {
	atStr, _ := cmd.Flags().GetString("at")
	at, err := parseTime(atStr)
	if err != nil {
		exitErr("card due", err)
	}

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	all, err := store.NewCards(kv).All(cmd.Context())
	if err != nil {
		exitErr("card due", err)
	}

	due := []model.RetentionState{}
	for _, id := range scheduler.Due(all, at) {
		due = append(due, all[id])
	}
	printJSON(cmd, due)
}

func runCardRm(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	if err := store.NewCards(kv).Delete(cmd.Context(), id); err != nil {
		exitErr("card rm", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", id)
}
