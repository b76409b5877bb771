package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeTrace(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyze_NoOpTraceReportsNoDeadlock(t *testing.T) {
	path := writeTrace(t, `{"type":"sem_ctor","sem":1,"count":1,"timestamp":0}`)
	out, err := runCLI(t, "analyze", path)
	require.NoError(t, err)
	require.Contains(t, out, "no deadlock")
}

func TestAnalyze_InsufficientUnitsDeadlockExitsWithSentinelAndPrintsWitnessVerbose(t *testing.T) {
	// Scenario 6: sem(1,2) with three independent waiters of 1 unit each
	// and no signals — one is permanently stuck.
	path := writeTrace(t,
		`{"type":"sem_ctor","sem":1,"count":2,"timestamp":0}`,
		`{"type":"sem_wait","sem":1,"pre":11,"post":21,"count":1,"timestamp":1}`,
		`{"type":"sem_wait_completed","sem":1,"post":21,"timestamp":2}`,
		`{"type":"sem_wait","sem":1,"pre":12,"post":22,"count":1,"timestamp":3}`,
		`{"type":"sem_wait_completed","sem":1,"post":22,"timestamp":4}`,
		`{"type":"sem_wait","sem":1,"pre":13,"post":23,"count":1,"timestamp":5}`,
		`{"type":"sem_wait_completed","sem":1,"post":23,"timestamp":6}`,
	)
	out, err := runCLI(t, "analyze", "--verbose", "--debug", path)
	require.True(t, errors.Is(err, errDeadlockFound))
	require.Contains(t, out, "deadlock found")
	require.Contains(t, out, "semaphore state")
	require.Contains(t, out, `"sem_id"`)
}

func TestAnalyze_MissingFileWrapsWithPkgErrors(t *testing.T) {
	_, err := runCLI(t, "analyze", "/nonexistent/path/trace.jsonl")
	require.Error(t, err)
	require.False(t, errors.Is(err, errDeadlockFound))
}

func TestAnalyze_SubsetSizeFlagIsHonored(t *testing.T) {
	path := writeTrace(t, `{"type":"sem_ctor","sem":1,"count":1,"timestamp":0}`)
	out, err := runCLI(t, "analyze", "-k", "1", path)
	require.NoError(t, err)
	require.Contains(t, out, "no deadlock")
}

func TestNormalize_WritesNormalizedJSONLines(t *testing.T) {
	path := writeTrace(t,
		`{"type":"sem_ctor","sem":{"address":42},"count":1,"timestamp":10}`,
		`{"type":"edge","pre":1,"post":2,"timestamp":11}`,
	)
	out, err := runCLI(t, "normalize", path)
	require.NoError(t, err)
	require.Contains(t, out, `"sem_ctor"`)
	require.Contains(t, out, `"edge"`)
}

func TestNormalize_OutputFlagRedirectsToFile(t *testing.T) {
	path := writeTrace(t, `{"type":"sem_ctor","sem":1,"count":1,"timestamp":0}`)
	outputPath := filepath.Join(t.TempDir(), "normalized.jsonl")
	out, err := runCLI(t, "normalize", "--output", outputPath, path)
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "sem_ctor")
}
