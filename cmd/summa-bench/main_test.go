package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/summa-dev/summa-bench/errs"
	"github.com/summa-dev/summa-bench/result"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	root := newRootCmd(&logs)
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunMerkleSumTreeEndToEnd(t *testing.T) {
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "bench.prom")
	out, err := execute(t, "run",
		"--levels", "2",
		"--k", "4",
		"--currencies", "1",
		"--variants", "v1",
		"--seed", "7",
		"--output-dir", dir,
		"--metrics-file", metricsPath,
	)
	require.NoError(t, err)

	path := filepath.Join(dir, "v1_k4_u4_c1.json")
	require.Equal(t, path, strings.TrimSpace(out))
	res, err := result.Load(path)
	require.NoError(t, err)
	require.Equal(t, uint32(4), res.K())
	require.Equal(t, 4, res.Users())
	require.Equal(t, 1, res.Currencies())
	require.GreaterOrEqual(t, res.CommitmentMillis(), int64(0))
	require.GreaterOrEqual(t, res.InclusionMillis(), int64(0))
	require.Equal(t, "milliseconds", res.TimeUnit())
	require.Equal(t, uint64(7), res.Seed())

	_, err = os.Stat(metricsPath)
	require.NoError(t, err)

	table, err := execute(t, "report", "--dir", dir)
	require.NoError(t, err)
	require.Contains(t, table, "| v1 | 4 | 4 | 1 | 1 |")
}

func TestRunRejectsInvalidConfigurationBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "run", "--currencies", "0", "--levels", "2", "--variants", "v1", "--output-dir", dir)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, err = execute(t, "run", "--currencies", "2", "--levels", "2", "--variants", "v3c", "--output-dir", dir)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	_, err = execute(t, "run", "--levels", "2", "--variants", "v9", "--output-dir", dir)
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "summa-bench@"), out)
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "report", "--dir", t.TempDir(), "--format", "xml")
	require.Error(t, err)
}
