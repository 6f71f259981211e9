package convert

import "github.com/cockroachdb/errors"

// Sentinel errors classifying conversion failures. Attach with errors.Mark so
// the cause chain survives; check with errors.Is or the helpers below.
var (
	// ErrInvalidSource indicates the source directory is missing, not a
	// directory, or unreadable. Fatal before any file is touched.
	ErrInvalidSource = errors.New("invalid source directory")

	// ErrParse indicates a source file could not be read as CSV. Recorded
	// per file; the batch continues.
	ErrParse = errors.New("csv parse failed")

	// ErrWrite indicates the Parquet output could not be produced or did not
	// verify. Recorded per file; the batch continues.
	ErrWrite = errors.New("parquet write failed")

	// ErrReportWrite indicates the run summary could not be written. Fatal
	// after conversion; completed outputs are kept.
	ErrReportWrite = errors.New("summary write failed")
)

func IsInvalidSource(err error) bool { return err != nil && errors.Is(err, ErrInvalidSource) }
func IsParse(err error) bool         { return err != nil && errors.Is(err, ErrParse) }
func IsWrite(err error) bool         { return err != nil && errors.Is(err, ErrWrite) }
func IsReportWrite(err error) bool   { return err != nil && errors.Is(err, ErrReportWrite) }
