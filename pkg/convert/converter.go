package convert

import (
	"os"

	"github.com/cockroachdb/errors"

	"github.com/wdm0006/parquetize/pkg/io/csvio"
	"github.com/wdm0006/parquetize/pkg/io/parquetio"
)

// ConvertFile converts one CSV file to one Parquet file. It returns the
// number of data rows read and the size of the written file. Failures on the
// read side are marked ErrParse, failures on the write side ErrWrite; either
// way no partial output remains.
func ConvertFile(srcPath, dstPath string, opt csvio.Options) (rows, size int64, err error) {
	r, err := csvio.Open(srcPath, opt)
	if err != nil {
		return 0, 0, errors.Mark(errors.Wrap(err, "open csv"), ErrParse)
	}
	defer r.Close()

	schema, err := r.InferSchema()
	if err != nil {
		return 0, 0, errors.Mark(errors.Wrap(err, "infer schema"), ErrParse)
	}
	f, err := r.ReadAll(schema)
	if err != nil {
		return 0, 0, errors.Mark(errors.Wrap(err, "read csv"), ErrParse)
	}

	if err := parquetio.WriteFrame(dstPath, f); err != nil {
		return 0, 0, errors.Mark(err, ErrWrite)
	}
	info, err := os.Stat(dstPath)
	if err != nil {
		return 0, 0, errors.Mark(errors.Wrap(err, "stat output"), ErrWrite)
	}
	return int64(f.Rows()), info.Size(), nil
}
