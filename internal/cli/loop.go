package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/learncore/internal/mastery"
	"github.com/rcliao/learncore/internal/model"
	"github.com/rcliao/learncore/internal/store"
)

func init() {
	loopCmd := &cobra.Command{
		Use:   "loop",
		Short: "Mastery-loop remediation sessions",
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start a remediation session for a topic",
		Run:   runLoopStart,
	}
	addSessionFlags(startCmd)
	startCmd.Flags().Bool("restart", false, "Replace an existing open session")

	advanceCmd := &cobra.Command{
		Use:   "advance",
		Short: "Complete the current phase and move to the next",
		Long:  "Complete the current phase. --phase must name the session's current phase; assessment phases need --score.",
		Run:   runLoopAdvance,
	}
	addSessionFlags(advanceCmd)
	advanceCmd.Flags().String("phase", "", "Phase being completed (required)")
	advanceCmd.Flags().Int("score", -1, "Assessment score 0-100")
	advanceCmd.Flags().String("weak", "", "Comma-separated weak points")
	advanceCmd.Flags().String("result", "", "Generated assessment text; score and weak points are extracted from it")
	advanceCmd.MarkFlagRequired("phase")

	stepCmd := &cobra.Command{
		Use:   "step [text]",
		Short: "Run the current phase with generated text",
		Long:  "Run the current phase. For assessment phases the text (arg or stdin) is the generated grading, from which score and weak points are extracted; for content phases it is the lesson delivered.",
		Run:   runLoopStep,
	}
	addSessionFlags(stepCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show a session",
		Run:   runLoopShow,
	}
	addSessionFlags(showCmd)

	exitCmd := &cobra.Command{
		Use:   "exit",
		Short: "Abandon a session",
		Run:   runLoopExit,
	}
	addSessionFlags(exitCmd)

	loopCmd.AddCommand(startCmd, advanceCmd, stepCmd, showCmd, exitCmd)
	RootCmd.AddCommand(loopCmd)
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("learner", "l", "", "Learner id (required)")
	cmd.Flags().StringP("topic", "t", "", "Topic (required)")
	cmd.MarkFlagRequired("learner")
	cmd.MarkFlagRequired("topic")
}

func sessionFlags(cmd *cobra.Command) (string, string) {
	learner, _ := cmd.Flags().GetString("learner")
	topic, _ := cmd.Flags().GetString("topic")
	return learner, topic
}

func newEngine() *mastery.Engine {
	return mastery.NewEngine(mastery.WithLogger(log), mastery.WithClock(timeNow))
}

func runLoopStart(cmd *cobra.Command, args []string) {
	learner, topic := sessionFlags(cmd)
	restart, _ := cmd.Flags().GetBool("restart")

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	sessions := store.NewSessions(kv)
	if existing, err := sessions.Get(cmd.Context(), learner, topic); err == nil && !existing.Closed && !restart {
		exitErr("loop start", fmt.Errorf("session already open at %s (use --restart to replace)", existing.Phase))
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		exitErr("loop start", err)
	}

	s, err := newEngine().Start(topic)
	if err != nil {
		exitErr("loop start", err)
	}
	if err := sessions.Put(cmd.Context(), learner, s); err != nil {
		exitErr("loop start", err)
	}
	printJSON(cmd, s)
}

func runLoopAdvance(cmd *cobra.Command, args []string) {
	learner, topic := sessionFlags(cmd)
	phaseStr, _ := cmd.Flags().GetString("phase")
	score, _ := cmd.Flags().GetInt("score")
	weak, _ := cmd.Flags().GetString("weak")
	result, _ := cmd.Flags().GetString("result")

	phase, err := model.ParsePhase(phaseStr)
	if err != nil {
		exitErr("loop advance", err)
	}

	var data mastery.Data
	switch {
	case result != "":
		a, err := mastery.ParseAssessment(result)
		if err != nil {
			exitErr("loop advance", err)
		}
		data = mastery.Scored(a.Score, a.WeakPoints...)
	case cmd.Flags().Changed("score"):
		data = mastery.Scored(score, splitList(weak)...)
	}

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	sessions := store.NewSessions(kv)
	s, err := sessions.Get(cmd.Context(), learner, topic)
	if err != nil {
		exitErr("loop advance", err)
	}

	next, err := newEngine().Advance(s, phase, data)
	if err != nil {
		exitErr("loop advance", err)
	}

	if next.Closed {
		// Mastery reached and acknowledged: the session is finished.
		if err := sessions.Delete(cmd.Context(), learner, topic); err != nil {
			exitErr("loop advance", err)
		}
	} else if err := sessions.Put(cmd.Context(), learner, next); err != nil {
		exitErr("loop advance", err)
	}
	printJSON(cmd, next)
}

// suppliedText serves text produced outside the process as both generated
// assessments and lesson content.
type suppliedText string

func (t suppliedText) Generate(context.Context, string) (string, error) {
	return string(t), nil
}

func (t suppliedText) Content(context.Context, mastery.ContentRequest) (string, error) {
	return string(t), nil
}

func runLoopStep(cmd *cobra.Command, args []string) {
	learner, topic := sessionFlags(cmd)

	text, err := readContent(args)
	if err != nil {
		exitErr("read stdin", err)
	}

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	sessions := store.NewSessions(kv)
	s, err := sessions.Get(cmd.Context(), learner, topic)
	if err != nil {
		exitErr("loop step", err)
	}

	r := &mastery.Runner{
		Engine: newEngine(),
		Assessments: mastery.GeneratedAssessments{
			Generator: suppliedText(text),
			Prompt:    func(mastery.AssessmentRequest) string { return "" },
		},
		Contents: suppliedText(text),
		Logger:   log,
	}
	res, err := r.Step(cmd.Context(), s)
	if err != nil {
		exitErr("loop step", err)
	}

	if res.Session.Closed {
		if err := sessions.Delete(cmd.Context(), learner, topic); err != nil {
			exitErr("loop step", err)
		}
	} else if err := sessions.Put(cmd.Context(), learner, res.Session); err != nil {
		exitErr("loop step", err)
	}
	printJSON(cmd, res)
}

func runLoopShow(cmd *cobra.Command, args []string) {
	learner, topic := sessionFlags(cmd)

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	s, err := store.NewSessions(kv).Get(cmd.Context(), learner, topic)
	if err != nil {
		exitErr("loop show", err)
	}
	printJSON(cmd, s)
}

func runLoopExit(cmd *cobra.Command, args []string) {
	learner, topic := sessionFlags(cmd)

	kv, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer kv.Close()

	sessions := store.NewSessions(kv)
	s, err := sessions.Get(cmd.Context(), learner, topic)
	if err != nil {
		exitErr("loop exit", err)
	}
	newEngine().Exit(s)
	if err := sessions.Delete(cmd.Context(), learner, topic); err != nil {
		exitErr("loop exit", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"learner":%q,"topic":%q}`+"\n", learner, topic)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
