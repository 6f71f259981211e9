// Package config resolves converter options from defaults, PARQUETIZE_*
// environment keys and an optional TOML or YAML config file, in that order.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/wdm0006/parquetize/pkg/convert"
	"github.com/wdm0006/parquetize/pkg/io/csvio"
	"github.com/wdm0006/parquetize/pkg/runlog"
)

type Options struct {
	CSVExt     string `toml:"csv_extension" yaml:"csv_extension"`
	ParquetExt string `toml:"parquet_extension" yaml:"parquet_extension"`
	Delimiter  string `toml:"delimiter" yaml:"delimiter"`
	HasHeader  bool   `toml:"has_header" yaml:"has_header"`
	SampleRows int    `toml:"sample_rows" yaml:"sample_rows"`
	Verify     bool   `toml:"verify" yaml:"verify"`
	LogLevel   string `toml:"log_level" yaml:"log_level"`
	LogFile    string `toml:"log_file" yaml:"log_file"`
}

func Default() Options {
	return Options{
		CSVExt:     ".csv",
		ParquetExt: ".parquet",
		Delimiter:  ",",
		HasHeader:  true,
		SampleRows: 100,
		LogLevel:   "info",
		LogFile:    runlog.DefaultFileName,
	}
}

// Load resolves the options. A .env file in the working directory is honored
// when present; filePath may be empty.
func Load(filePath string) (Options, error) {
	_ = godotenv.Load()
	o := Default()
	o.applyEnv()
	if filePath != "" {
		if err := o.applyFile(filePath); err != nil {
			return Options{}, err
		}
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

func (o *Options) applyEnv() {
	o.CSVExt = getEnv("PARQUETIZE_CSV_EXTENSION", o.CSVExt)
	o.ParquetExt = getEnv("PARQUETIZE_PARQUET_EXTENSION", o.ParquetExt)
	o.Delimiter = getEnv("PARQUETIZE_DELIMITER", o.Delimiter)
	o.LogLevel = getEnv("PARQUETIZE_LOG_LEVEL", o.LogLevel)
	o.LogFile = getEnv("PARQUETIZE_LOG_FILE", o.LogFile)
	if v := os.Getenv("PARQUETIZE_HAS_HEADER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			o.HasHeader = b
		}
	}
	if v := os.Getenv("PARQUETIZE_VERIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			o.Verify = b
		}
	}
	if v := os.Getenv("PARQUETIZE_SAMPLE_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			o.SampleRows = n
		}
	}
}

// applyFile decodes the config file over the current options; the decoder is
// picked by extension. Keys absent from the file keep their current values.
func (o *Options) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(b, o); err != nil {
			return errors.Wrapf(err, "decode %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, o); err != nil {
			return errors.Wrapf(err, "decode %s", path)
		}
	default:
		return errors.Newf("unsupported config format %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}
	return nil
}

func (o Options) Validate() error {
	if utf8.RuneCountInString(o.Delimiter) != 1 {
		return errors.Newf("delimiter must be a single character, got %q", o.Delimiter)
	}
	if o.SampleRows <= 0 {
		return errors.Newf("sample_rows must be positive, got %d", o.SampleRows)
	}
	if !strings.HasPrefix(o.CSVExt, ".") {
		return errors.Newf("csv_extension must start with '.', got %q", o.CSVExt)
	}
	if !strings.HasPrefix(o.ParquetExt, ".") {
		return errors.Newf("parquet_extension must start with '.', got %q", o.ParquetExt)
	}
	return nil
}

// ConvertOptions maps the resolved configuration onto the batch runner's
// options. Call after Validate.
func (o Options) ConvertOptions() convert.Options {
	return convert.Options{
		CSVExt:     o.CSVExt,
		ParquetExt: o.ParquetExt,
		Verify:     o.Verify,
		CSV: csvio.Options{
			Delimiter:  []rune(o.Delimiter)[0],
			HasHeader:  o.HasHeader,
			SampleRows: o.SampleRows,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
