package parquetio

import (
	"io"
	"os"
	"strings"

	parquet "github.com/segmentio/parquet-go"
)

// openFile opens path as a parquet file, reading the footer so the file's
// own schema is available. The caller closes f.
func openFile(path string) (*os.File, *parquet.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return f, pf, nil
}

// RowCount reports the number of rows in a Parquet file without reading them.
func RowCount(path string) (int64, error) {
	f, pf, err := openFile(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return pf.NumRows(), nil
}

// ReadAll loads every row of a Parquet file as generic maps. Null cells are
// absent from their row's map.
func ReadAll(path string) ([]map[string]any, error) {
	f, pf, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	// a generic map reader cannot derive a schema from its type parameter;
	// it has to come from the file
	r := parquet.NewGenericReader[map[string]any](f, pf.Schema())
	defer r.Close()

	var out []map[string]any
	buf := make([]map[string]any, 1024)
	for {
		// the generic reader reconstructs rows by assigning into the
		// destination maps, so each one must be non-nil (and fresh, so no
		// keys leak over from a previously read row)
		for i := range buf {
			buf[i] = make(map[string]any)
		}
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			m := make(map[string]any, len(buf[i]))
			for k, v := range buf[i] {
				if v != nil {
					m[k] = v
				}
			}
			out = append(out, m)
		}
		if err != nil {
			// the reader reports end of data as EOF, sometimes wrapped
			if err == io.EOF || strings.Contains(err.Error(), "EOF") {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}
