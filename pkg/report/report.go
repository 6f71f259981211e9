// Package report persists the end-of-run summary and renders its recap for
// the console and log.
package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"

	"github.com/wdm0006/parquetize/pkg/convert"
	"github.com/wdm0006/parquetize/pkg/runlog"
)

// SummaryPrefix starts every summary file name; the timestamp and a
// collision suffix follow.
const SummaryPrefix = "Bulk_Run_Summary_"

const stampLayout = "20060102_150405"

// SummaryFileName returns the summary name stamped with t.
func SummaryFileName(t time.Time) string {
	return SummaryPrefix + t.Format(stampLayout) + ".json"
}

// Writer persists one run's summary and logs its recap.
type Writer struct {
	log *runlog.Logger
}

func NewWriter(log *runlog.Logger) *Writer { return &Writer{log: log} }

// WriteSummary serializes the summary with 4-space indentation into the
// run's target directory. The file is stamped with the job end time; if that
// name is taken (two runs inside one second) it gets a numeric suffix.
// Returns the path written.
func (w *Writer) WriteSummary(sum *convert.RunSummary) (string, error) {
	name := convert.NextAvailableName(sum.TargetDir, SummaryFileName(sum.JobEnd), nil)
	path := filepath.Join(sum.TargetDir, name)

	b, err := json.MarshalIndent(sum, "", "    ")
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "marshal summary"), convert.ErrReportWrite)
	}
	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errors.Mark(errors.Wrap(err, "write summary"), convert.ErrReportWrite)
	}
	w.log.Infof("Run summary written to %s", name)
	return path, nil
}

// LogRecap emits the end-of-run lines: duration, totals and one line per
// created file.
func (w *Writer) LogRecap(sum *convert.RunSummary) {
	w.log.Infof("Job completed in %.2f seconds", sum.DurationSeconds)
	w.log.Infof("Files processed: %d, converted: %d, rows converted: %d",
		sum.FilesProcessed, sum.FilesConverted, sum.RowsConverted)

	created := sum.Converted()
	if len(created) == 0 {
		w.log.Info("No files were converted.")
		return
	}
	w.log.Info("Files created:")
	for _, r := range created {
		w.log.Infof("  - %s (%d rows, %d bytes)", r.TargetFile, r.Rows, r.SizeBytes)
	}
}

// RenderTable prints the per-file results as a console table.
func RenderTable(out io.Writer, sum *convert.RunSummary) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Source", "Target", "Rows", "Bytes", "Status", "Error"})
	for _, r := range sum.Results {
		table.Append([]string{
			r.SourceFile,
			r.TargetFile,
			strconv.FormatInt(r.Rows, 10),
			strconv.FormatInt(r.SizeBytes, 10),
			r.Status,
			r.Error,
		})
	}
	table.Render()
}
