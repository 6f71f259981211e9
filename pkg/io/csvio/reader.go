// Package csvio reads CSV files into frames, inferring column types from a
// sample of leading rows.
package csvio

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/wdm0006/parquetize/pkg/frame"
	"github.com/wdm0006/parquetize/pkg/io/ioutils"
)

type Options struct {
	Delimiter  rune // 0 = ','
	HasHeader  bool
	SampleRows int // rows sampled for inference; 0 = 100
}

type Reader struct {
	rc  io.ReadCloser
	r   *csv.Reader
	opt Options
	buf [][]string // records consumed during inference, replayed by ReadAll
}

// Open opens a CSV file (gzip transparently decompressed) for reading.
// The returned Reader must be closed.
func Open(path string, opt Options) (*Reader, error) {
	rc, err := ioutils.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	rr := csv.NewReader(rc)
	rr.Comma = ','
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	return &Reader{rc: rc, r: rr, opt: opt}, nil
}

func (r *Reader) Close() error { return r.rc.Close() }

// InferSchema determines column names and kinds. Names come from the header
// row when present (blank cells fall back to col_N, duplicates get numeric
// suffixes); kinds come from sampling up to SampleRows data rows. A file with
// a header but no data rows yields an all-string schema.
func (r *Reader) InferSchema() (frame.Schema, error) {
	rec, err := r.r.Read()
	if err == io.EOF {
		return frame.Schema{}, errors.New("empty input")
	}
	if err != nil {
		return frame.Schema{}, err
	}

	var names []string
	var sample [][]string
	if r.opt.HasHeader {
		names = headerNames(rec)
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
		sample = append(sample, rec)
	}

	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(sample) < max {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return frame.Schema{}, err
		}
		sample = append(sample, rec)
	}

	kinds := inferKinds(len(names), sample)
	s := frame.Schema{Fields: make([]frame.Field, len(names))}
	for i, name := range names {
		s.Fields[i] = frame.Field{Name: name, Kind: kinds[i]}
	}
	r.buf = sample
	return s, nil
}

// ReadAll loads the remaining records into a Frame, starting with the rows
// buffered during inference. Structural CSV errors abort the read.
func (r *Reader) ReadAll(s frame.Schema) (*frame.Frame, error) {
	f := frame.New(s)
	for _, rec := range r.buf {
		appendRecord(f, rec)
	}
	r.buf = nil
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		appendRecord(f, rec)
	}
	return f, nil
}

func appendRecord(f *frame.Frame, rec []string) {
	cells := make([]string, len(rec))
	for i, v := range rec {
		cells[i] = scrub(v)
	}
	f.AppendRecord(cells)
}

// scrub trims whitespace and replaces invalid UTF-8 rather than failing.
func scrub(v string) string {
	return strings.ToValidUTF8(strings.TrimSpace(v), "?")
}

func headerNames(rec []string) []string {
	names := make([]string, len(rec))
	seen := make(map[string]bool, len(rec))
	for i, cell := range rec {
		name := scrub(cell)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = "col_" + strconv.Itoa(i)
		}
		base := name
		for n := 1; seen[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

var numRe = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// inferKinds votes per column over the sampled rows. Numeric majorities win
// over strings (all-integral samples become Int, otherwise Float), boolean
// majorities come next, and everything else, including empty columns, is
// String.
func inferKinds(ncol int, rows [][]string) []frame.Kind {
	kinds := make([]frame.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, boolean, str := 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			switch {
			case numRe.MatchString(v):
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
			case isBoolWord(v):
				boolean++
			default:
				str++
			}
		}
		switch {
		case num > str && num >= boolean:
			if integer == num {
				kinds[c] = frame.KindInt
			} else {
				kinds[c] = frame.KindFloat
			}
		case boolean > str:
			kinds[c] = frame.KindBool
		default:
			kinds[c] = frame.KindString
		}
	}
	return kinds
}

func isBoolWord(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false":
		return true
	}
	return false
}
