package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd is the base command; all configuration is bound into viper in
// init so DEADLOCKDETECT_* environment variables can override any flag
// without threading it through by hand.
var rootCmd = &cobra.Command{
	Use:   "deadlockdetect",
	Short: "Find semaphore deadlocks in async-runtime trace logs",
	Long: `deadlockdetect turns a trace of semaphore construction, wait, and
signal events into a happens-before graph and exhaustively checks
whether every schedule consistent with that graph can run to
completion.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("deadlockdetect")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(normalizeCmd)
}

// errDeadlockFound is returned by analyzeCmd's RunE purely to signal
// exit code 1 to Execute; the human-readable verdict has already been
// printed by the time it's returned, so Execute must not also print it
// as an error banner (a deadlock verdict is data, not a failure).
var errDeadlockFound = errors.New("deadlock found")

// Execute runs the root command and translates its outcome into the
// process exit code spec.md §6 defines: 0 for no deadlock, 1 for a
// deadlock verdict or an invalid invocation.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, errDeadlockFound) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(1)
}
