// Package cli implements the learncore CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/learncore/internal/chunker"
	"github.com/rcliao/learncore/internal/config"
	"github.com/rcliao/learncore/internal/logger"
	"github.com/rcliao/learncore/internal/retriever"
	"github.com/rcliao/learncore/internal/store"
)

var (
	dbPath      string
	backendFlag string
	logLevel    string

	cfg *config.Config
	log = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "learncore",
	Short: "Adaptive learning core: retrieval, spaced repetition, mastery loops",
	Long:  "Grounding retrieval over study material, SM-2 flashcard scheduling and mastery-loop remediation. JSON in, JSON out.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if dbPath != "" {
			cfg.Store.DBPath = dbPath
		}
		if backendFlag != "" {
			cfg.Store.Backend = backendFlag
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		log = logger.New(cfg.Log)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $LEARNCORE_DB or ~/.learncore/learncore.db)")
	RootCmd.PersistentFlags().StringVarP(&backendFlag, "backend", "b", "", "Store backend: sqlite, memory or redis (default: $LEARNCORE_BACKEND or sqlite)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func openStore(cmd *cobra.Command) (store.KV, error) {
	return store.Open(cmd.Context(), cfg.Store, log)
}

func chunkOptions() chunker.Options {
	return chunker.Options{
		ParentSize:    cfg.Chunking.ParentSize,
		ParentOverlap: cfg.Chunking.ParentOverlap,
		ChildSize:     cfg.Chunking.ChildSize,
		ChildOverlap:  cfg.Chunking.ChildOverlap,
	}
}

func retrieveOptions() retriever.Options {
	return retriever.Options{
		TopChildren:   cfg.Retrieval.TopChildren,
		TopParents:    cfg.Retrieval.TopParents,
		FallbackChars: cfg.Retrieval.FallbackChars,
	}
}

// readContent returns the positional args joined, or stdin when it is piped.
func readContent(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", nil
}

func timeNow() time.Time {
	return time.Now().UTC()
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return timeNow(), nil
	}
	return time.Parse(time.RFC3339, s)
}

func printJSON(cmd *cobra.Command, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func exitErr(msg string, err error) {
	log.Error(msg, zap.Error(err))
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
