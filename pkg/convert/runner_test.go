package convert

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/parquetize/pkg/io/csvio"
	"github.com/wdm0006/parquetize/pkg/io/parquetio"
	"github.com/wdm0006/parquetize/pkg/runlog"
)

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if filepath.Ext(name) == ".gz" {
		f, err := os.Create(p)
		require.NoError(t, err)
		zw := gzip.NewWriter(f)
		_, err = zw.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.NoError(t, f.Close())
		return
	}
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func runBatch(t *testing.T, src, dst string, opt Options) *RunSummary {
	t.Helper()
	sum, err := NewRunner(Job{SourceDir: src, TargetDir: dst}, opt, runlog.NewNop()).Run(context.Background())
	require.NoError(t, err)
	return sum
}

func csvOpt() Options {
	return Options{CSV: csvio.Options{HasHeader: true}}
}

func TestRunEndToEnd(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeSource(t, src, "a.csv", "x,y\n1,2\n3,4\n")
	writeSource(t, src, "b.csv", "x\n")

	log, err := runlog.New(runlog.Options{Dir: dst, Console: io.Discard})
	require.NoError(t, err)
	defer log.Close()

	sum, err := NewRunner(Job{SourceDir: src, TargetDir: dst}, csvOpt(), log).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 2, sum.FilesProcessed)
	assert.Equal(t, 2, sum.FilesConverted)
	assert.Equal(t, int64(2), sum.RowsConverted)
	require.Len(t, sum.Results, 2)
	assert.False(t, sum.JobEnd.Before(sum.JobStart))
	assert.GreaterOrEqual(t, sum.DurationSeconds, 0.0)

	nA, err := parquetio.RowCount(filepath.Join(dst, "a.parquet"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), nA)
	nB, err := parquetio.RowCount(filepath.Join(dst, "b.parquet"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), nB)

	data, err := os.ReadFile(filepath.Join(dst, runlog.DefaultFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Converted a.parquet (2 rows")
}

func TestRunFailureIsolation(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeSource(t, src, "a.csv", "x\n1\n")
	writeSource(t, src, "b.csv", "x,y\n1,\"unclosed\n")
	writeSource(t, src, "c.csv", "x\n2\n3\n")

	sum := runBatch(t, src, dst, csvOpt())

	assert.Equal(t, 3, sum.FilesProcessed)
	assert.Equal(t, 2, sum.FilesConverted)
	assert.Equal(t, int64(3), sum.RowsConverted)
	require.Len(t, sum.Results, 3)

	assert.Equal(t, StatusSuccess, sum.Results[0].Status)
	assert.Equal(t, StatusFailed, sum.Results[1].Status)
	assert.NotEmpty(t, sum.Results[1].Error)
	assert.Empty(t, sum.Results[1].TargetFile)
	assert.Equal(t, StatusSuccess, sum.Results[2].Status, "files after a failure must still convert")

	_, err := os.Stat(filepath.Join(dst, "b.parquet"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunNameCollision(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeSource(t, src, "data.csv", "x\n1\n2\n")
	writeSource(t, src, "data.csv.gz", "x\n1\n2\n3\n")

	sum := runBatch(t, src, dst, csvOpt())

	require.Len(t, sum.Results, 2)
	assert.Equal(t, "data.parquet", sum.Results[0].TargetFile)
	assert.Equal(t, "data_1.parquet", sum.Results[1].TargetFile)

	nPlain, err := parquetio.RowCount(filepath.Join(dst, "data.parquet"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), nPlain)
	nGz, err := parquetio.RowCount(filepath.Join(dst, "data_1.parquet"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), nGz)
}

func TestRunPreexistingOutputGetsSuffix(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeSource(t, src, "data.csv", "x\n1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dst, "data.parquet"), []byte("keep me"), 0o644))

	sum := runBatch(t, src, dst, csvOpt())

	require.Len(t, sum.Results, 1)
	assert.Equal(t, "data_1.parquet", sum.Results[0].TargetFile)

	kept, err := os.ReadFile(filepath.Join(dst, "data.parquet"))
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(kept), "existing files are never overwritten")
}

func TestRunProcessesInSortedOrder(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	for _, name := range []string{"c.csv", "a.csv", "b.csv"} {
		writeSource(t, src, name, "x\n1\n")
	}

	sum := runBatch(t, src, dst, csvOpt())

	require.Len(t, sum.Results, 3)
	assert.Equal(t, "a.csv", sum.Results[0].SourceFile)
	assert.Equal(t, "b.csv", sum.Results[1].SourceFile)
	assert.Equal(t, "c.csv", sum.Results[2].SourceFile)
}

func TestRunMatchesExtensionsOnly(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeSource(t, src, "a.csv", "x\n1\n")
	writeSource(t, src, "UPPER.CSV", "x\n1\n")
	writeSource(t, src, "notes.txt", "not a csv")
	require.NoError(t, os.Mkdir(filepath.Join(src, "dir.csv"), 0o755))

	sum := runBatch(t, src, dst, csvOpt())

	require.Len(t, sum.Results, 2)
	assert.Equal(t, "UPPER.CSV", sum.Results[0].SourceFile)
	assert.Equal(t, "UPPER.parquet", sum.Results[0].TargetFile)
	assert.Equal(t, "a.csv", sum.Results[1].SourceFile)
}

func TestRunEmptySourceDir(t *testing.T) {
	sum := runBatch(t, t.TempDir(), t.TempDir(), csvOpt())
	assert.Equal(t, 0, sum.FilesProcessed)
	assert.Equal(t, 0, sum.FilesConverted)
	assert.NotNil(t, sum.Results)
	assert.Empty(t, sum.Results)
}

func TestRunCancelledContext(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeSource(t, src, "a.csv", "x\n1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := NewRunner(Job{SourceDir: src, TargetDir: dst}, csvOpt(), runlog.NewNop()).Run(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, sum, "a partial summary must survive the interrupt")
	assert.Equal(t, 0, sum.FilesProcessed)
	assert.False(t, sum.JobEnd.IsZero())
}

func TestRunVerifyMode(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeSource(t, src, "a.csv", "x,y\n1,2\n3,4\n")

	opt := csvOpt()
	opt.Verify = true
	sum := runBatch(t, src, dst, opt)

	assert.Equal(t, 1, sum.FilesConverted)
	assert.Equal(t, int64(2), sum.RowsConverted)
	assert.Equal(t, "a.parquet", sum.Results[0].TargetFile)

	n, err := parquetio.RowCount(filepath.Join(dst, "a.parquet"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestVerifyMismatchRemovesOutput(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeSource(t, src, "a.csv", "x\n1\n2\n")

	out := filepath.Join(dst, "a.parquet")
	rows, _, err := ConvertFile(filepath.Join(src, "a.csv"), out, csvio.Options{HasHeader: true})
	require.NoError(t, err)

	r := NewRunner(Job{SourceDir: src, TargetDir: dst}, csvOpt(), runlog.NewNop())
	err = r.verify("a.parquet", out, rows+1)
	require.Error(t, err)
	assert.True(t, IsWrite(err))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "a file that fails verification must be removed")
}

func TestVerifyUnreadableOutputRemovesIt(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	out := filepath.Join(dst, "bogus.parquet")
	require.NoError(t, os.WriteFile(out, []byte("not parquet"), 0o644))

	r := NewRunner(Job{SourceDir: src, TargetDir: dst}, csvOpt(), runlog.NewNop())
	err := r.verify("bogus.parquet", out, 1)
	require.Error(t, err)
	assert.True(t, IsWrite(err))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunIdempotentReads(t *testing.T) {
	src := t.TempDir()
	writeSource(t, src, "a.csv", "x,label\n1,alpha\n2,beta\n3,\n")

	dst1, dst2 := t.TempDir(), t.TempDir()
	first := runBatch(t, src, dst1, csvOpt())
	second := runBatch(t, src, dst2, csvOpt())

	assert.Equal(t, first.RowsConverted, second.RowsConverted)
	assert.Equal(t, first.FilesConverted, second.FilesConverted)

	rows1, err := parquetio.ReadAll(filepath.Join(dst1, first.Results[0].TargetFile))
	require.NoError(t, err)
	rows2, err := parquetio.ReadAll(filepath.Join(dst2, second.Results[0].TargetFile))
	require.NoError(t, err)
	assert.Equal(t, rows1, rows2)
}

func TestConvertedFiltersFailures(t *testing.T) {
	sum := RunSummary{Results: []FileResult{
		{SourceFile: "a.csv", Status: StatusSuccess},
		{SourceFile: "b.csv", Status: StatusFailed},
		{SourceFile: "c.csv", Status: StatusSuccess},
	}, FilesConverted: 2}

	got := sum.Converted()
	require.Len(t, got, 2)
	assert.Equal(t, "a.csv", got[0].SourceFile)
	assert.Equal(t, "c.csv", got[1].SourceFile)
}
