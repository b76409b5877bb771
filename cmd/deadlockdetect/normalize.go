package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taskgraph-tools/deadlockdetect/internal/trace"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>...",
	Short: "Run only the Event Normalizer and print the normalized JSON Lines artifact",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().String("output", "", "write the normalized artifact to this path instead of stdout")
	if err := viper.BindPFlag("output", normalizeCmd.Flags().Lookup("output")); err != nil {
		panic(err)
	}
}

func runNormalize(cmd *cobra.Command, args []string) error {
	logger, runID := newRunLogger()
	logger.Info("normalize starting", "files", args)

	raw, err := readAndMergeFiles(args)
	if err != nil {
		return err
	}

	normalizer := trace.New()
	normalized, warnings, err := normalizer.Normalize(raw)
	if err != nil {
		return errors.Wrap(err, "normalize trace")
	}
	for _, w := range warnings {
		logger.Warn("trace integrity warning", "event_type", w.EventType, "timestamp", w.Timestamp, "error", w.Err)
	}

	var out io.Writer = cmd.OutOrStdout()
	outputPath := viper.GetString("output")
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return errors.Wrapf(err, "create %s", outputPath)
		}
		defer f.Close()
		out = f
	}

	if err := trace.WriteNormalizedEvents(out, normalized); err != nil {
		return errors.Wrap(err, "write normalized artifact")
	}
	logger.Info("normalize finished", "run_id", runID, "events", len(normalized))
	return nil
}
