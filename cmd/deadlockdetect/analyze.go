package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taskgraph-tools/deadlockdetect/internal/dag"
	"github.com/taskgraph-tools/deadlockdetect/internal/search"
	"github.com/taskgraph-tools/deadlockdetect/internal/simulate"
	"github.com/taskgraph-tools/deadlockdetect/internal/trace"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Normalize, build, and search one or more trace files for a deadlock",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("verbose", false, "print the witness execution state when a deadlock is found")
	analyzeCmd.Flags().Bool("debug", false, "emit the per-semaphore debug artifact when a deadlock is found")
	analyzeCmd.Flags().String("debug-output", "", "write the debug artifact to this path instead of stdout")
	analyzeCmd.Flags().IntP("subset-size", "k", 3, "maximum semaphore subset size the Deadlock Search considers")

	for _, name := range []string{"verbose", "debug", "debug-output", "subset-size"} {
		if err := viper.BindPFlag(name, analyzeCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger, runID := newRunLogger()
	logger.Info("analyze starting", "files", args)

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

	graph, err := dag.Build(normalized)
	if err != nil {
		return errors.Wrap(err, "build happens-before graph")
	}
	if err := graph.Validate(); err != nil {
		return errors.Wrap(err, "validate happens-before graph")
	}

	k := viper.GetInt("subset-size")
	verdict, err := search.Detect(graph, search.WithSubsetSize(k))
	if err != nil {
		return errors.Wrap(err, "deadlock search")
	}

	out := cmd.OutOrStdout()
	if !verdict.Deadlock {
		fmt.Fprintln(out, "no deadlock")
		logger.Info("analyze finished", "run_id", runID, "deadlock", false)
		return nil
	}

	fmt.Fprintf(out, "deadlock found (semaphore subset %v)\n", verdict.Subset)
	if viper.GetBool("verbose") {
		fmt.Fprintln(out, verdict.Witness.String())
	}
	if viper.GetBool("debug") {
		if err := writeDebugArtifact(verdict.Witness.DebugInfo(), viper.GetString("debug-output"), out); err != nil {
			return errors.Wrap(err, "write debug artifact")
		}
	}
	logger.Info("analyze finished", "run_id", runID, "deadlock", true, "subset", verdict.Subset)
	return errDeadlockFound
}

func readAndMergeFiles(paths []string) ([]trace.RawEvent, error) {
	perFile := make([][]trace.RawEvent, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		events, err := trace.ReadRawEvents(f)
		closeErr := f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		if closeErr != nil {
			return nil, errors.Wrapf(closeErr, "close %s", path)
		}
		perFile = append(perFile, events)
	}
	return trace.MergeAndSort(perFile), nil
}

// writeDebugArtifact renders the per-semaphore debug records as JSON
// Lines to outputPath, or to fallback (the command's stdout) when
// outputPath is empty.
func writeDebugArtifact(records []simulate.SemaphoreDebug, outputPath string, fallback io.Writer) error {
	w := fallback
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return errors.Wrapf(err, "open %s", outputPath)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
