// Package parquetio writes frames to Parquet files and reads them back.
package parquetio

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	pw "github.com/xitongsys/parquet-go/writer"
	local "github.com/xitongsys/parquet-go-source/local"

	"github.com/wdm0006/parquetize/pkg/frame"
)

// parquetSchemaJSON renders a schema as the JSON document the parquet-go
// JSONWriter expects. Every field is OPTIONAL so null cells can be omitted.
func parquetSchemaJSON(s frame.Schema) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, fd := range s.Fields {
		tag := "name=" + fd.Name + ", repetitiontype=OPTIONAL, type="
		switch fd.Kind {
		case frame.KindFloat:
			tag += "DOUBLE"
		case frame.KindInt:
			tag += "INT64"
		case frame.KindBool:
			tag += "BOOLEAN"
		default:
			// the pinned parquet-go release predates the
			// type=BYTE_ARRAY, convertedtype=UTF8 tag spelling
			tag += "UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteFrame writes a Frame to a Parquet file. On any failure the partial
// output file is removed so a failed conversion leaves nothing behind.
func WriteFrame(path string, f *frame.Frame) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return errors.Wrap(err, "create parquet file")
	}
	w, err := pw.NewJSONWriter(parquetSchemaJSON(f.Schema()), fw, 4)
	if err != nil {
		_ = fw.Close()
		_ = os.Remove(path)
		return errors.Wrap(err, "parquet writer init")
	}
	for i := 0; i < f.Rows(); i++ {
		// JSONWriter records are JSON documents, not Go maps
		rec, err := json.Marshal(f.Row(i))
		if err != nil {
			_ = fw.Close()
			_ = os.Remove(path)
			return errors.Wrapf(err, "encode row %d", i)
		}
		if err := w.Write(string(rec)); err != nil {
			_ = fw.Close()
			_ = os.Remove(path)
			return errors.Wrapf(err, "parquet write row %d", i)
		}
	}
	if err := w.WriteStop(); err != nil {
		_ = fw.Close()
		_ = os.Remove(path)
		return errors.Wrap(err, "parquet finalize")
	}
	if err := fw.Close(); err != nil {
		_ = os.Remove(path)
		return errors.Wrap(err, "close parquet file")
	}
	return nil
}
