package convert

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/wdm0006/parquetize/pkg/io/csvio"
	"github.com/wdm0006/parquetize/pkg/io/parquetio"
	"github.com/wdm0006/parquetize/pkg/runlog"
)

// Options controls how the batch runner finds and converts files.
type Options struct {
	CSVExt     string // default ".csv"; the gzipped twin (".csv.gz") is always accepted
	ParquetExt string // default ".parquet"
	CSV        csvio.Options
	Verify     bool // re-read each output and compare row counts
}

func (o Options) withDefaults() Options {
	if o.CSVExt == "" {
		o.CSVExt = ".csv"
	}
	if o.ParquetExt == "" {
		o.ParquetExt = ".parquet"
	}
	return o
}

// Runner executes one batch over a Job, one file at a time. A file's failure
// is recorded and never stops the batch.
type Runner struct {
	job Job
	opt Options
	log *runlog.Logger
}

func NewRunner(job Job, opt Options, log *runlog.Logger) *Runner {
	return &Runner{job: job, opt: opt.withDefaults(), log: log}
}

// Run converts every matching file in the source directory, in lexicographic
// name order, and returns the finalized summary. On context cancellation it
// stops between files and returns the partial summary together with the
// context's error so the caller can still flush a report.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	sum := &RunSummary{
		RunID:     uuid.NewString(),
		SourceDir: r.job.SourceDir,
		TargetDir: r.job.TargetDir,
		JobStart:  start,
		Results:   []FileResult{},
	}

	files, err := r.listSources()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "scan source directory"), ErrInvalidSource)
	}
	r.log.Infof("Starting bulk conversion: %s -> %s", r.job.SourceDir, r.job.TargetDir)
	r.log.Infof("Found %d CSV file(s)", len(files))

	reserved := map[string]bool{}
	var runErr error
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			r.log.Warnf("Interrupted after %d of %d file(s)", len(sum.Results), len(files))
			runErr = err
			break
		}
		res := r.convertOne(name, reserved)
		sum.Results = append(sum.Results, res)
		if res.Status == StatusSuccess {
			sum.FilesConverted++
			sum.RowsConverted += res.Rows
		}
	}

	sum.FilesProcessed = len(sum.Results)
	sum.JobEnd = time.Now()
	sum.DurationSeconds = sum.JobEnd.Sub(start).Seconds()
	return sum, runErr
}

func (r *Runner) convertOne(name string, reserved map[string]bool) FileResult {
	outName := NextAvailableName(r.job.TargetDir, r.outputName(name), reserved)
	reserved[outName] = true

	r.log.Infof("Converting %s -> %s", name, outName)
	src := filepath.Join(r.job.SourceDir, name)
	dst := filepath.Join(r.job.TargetDir, outName)
	rows, size, err := ConvertFile(src, dst, r.opt.CSV)
	if err == nil && r.opt.Verify {
		err = r.verify(outName, dst, rows)
	}
	if err != nil {
		r.log.Errorf("Failed to convert %s: %v", name, err)
		return FileResult{SourceFile: name, Status: StatusFailed, Error: err.Error()}
	}
	r.log.Infof("Converted %s (%d rows, %d bytes)", outName, rows, size)
	return FileResult{SourceFile: name, TargetFile: outName, Rows: rows, SizeBytes: size, Status: StatusSuccess}
}

// verify re-reads the written file and compares row counts. A file that
// fails verification is removed, keeping the failed-result contract: no
// output exists under a failed file's name.
func (r *Runner) verify(outName, path string, rows int64) error {
	n, err := parquetio.RowCount(path)
	if err != nil {
		_ = os.Remove(path)
		return errors.Mark(errors.Wrap(err, "verify output"), ErrWrite)
	}
	if n != rows {
		_ = os.Remove(path)
		return errors.Mark(errors.Newf("verify output: wrote %d rows, file has %d", rows, n), ErrWrite)
	}
	r.log.Debugf("Verified %s (%d rows)", outName, n)
	return nil
}

// listSources returns the names of regular files in the source directory
// matching the CSV extension (case-insensitive, ".gz" twin included), sorted
// lexicographically for deterministic processing order.
func (r *Runner) listSources() ([]string, error) {
	entries, err := os.ReadDir(r.job.SourceDir)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(r.opt.CSVExt)
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		n := strings.ToLower(e.Name())
		if strings.HasSuffix(n, ext) || strings.HasSuffix(n, ext+".gz") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// outputName maps a source file name to its Parquet name, stripping the
// ".gz" and CSV extensions case-insensitively.
func (r *Runner) outputName(name string) string {
	base := name
	if strings.HasSuffix(strings.ToLower(base), ".gz") {
		base = base[:len(base)-len(".gz")]
	}
	if strings.HasSuffix(strings.ToLower(base), strings.ToLower(r.opt.CSVExt)) {
		base = base[:len(base)-len(r.opt.CSVExt)]
	}
	return base + r.opt.ParquetExt
}
