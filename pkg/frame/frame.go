package frame

import (
	"strconv"
	"strings"
)

// Kind enumerates the logical column types a CSV cell can be read as.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Field names and types one column of a Schema.
type Field struct {
	Name string
	Kind Kind
}

// Schema describes the logical shape of a dataset.
type Schema struct {
	Fields []Field
}

// Column is a typed, nullable column abstraction. Implementations are
// provided by this package only.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	// Value returns the cell as its Go type; ok is false for nulls.
	Value(i int) (any, bool)

	appendCell(raw string)
	appendNull()
}

type BoolColumn struct {
	name  string
	data  []bool
	nulls []bool
}

func (c *BoolColumn) Name() string      { return c.name }
func (c *BoolColumn) Kind() Kind        { return KindBool }
func (c *BoolColumn) Len() int          { return len(c.data) }
func (c *BoolColumn) IsNull(i int) bool { return c.nulls[i] }
func (c *BoolColumn) Get(i int) (bool, bool) {
	return c.data[i], !c.nulls[i]
}
func (c *BoolColumn) Value(i int) (any, bool) {
	return c.data[i], !c.nulls[i]
}
func (c *BoolColumn) appendNull() {
	c.data = append(c.data, false)
	c.nulls = append(c.nulls, true)
}
func (c *BoolColumn) appendCell(raw string) {
	if raw == "" {
		c.appendNull()
		return
	}
	v, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		c.appendNull()
		return
	}
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func (c *IntColumn) Name() string      { return c.name }
func (c *IntColumn) Kind() Kind        { return KindInt }
func (c *IntColumn) Len() int          { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool { return c.nulls[i] }
func (c *IntColumn) Get(i int) (int64, bool) {
	return c.data[i], !c.nulls[i]
}
func (c *IntColumn) Value(i int) (any, bool) {
	return c.data[i], !c.nulls[i]
}
func (c *IntColumn) appendNull() {
	c.data = append(c.data, 0)
	c.nulls = append(c.nulls, true)
}
func (c *IntColumn) appendCell(raw string) {
	if raw == "" {
		c.appendNull()
		return
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.appendNull()
		return
	}
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}

type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func (c *FloatColumn) Name() string      { return c.name }
func (c *FloatColumn) Kind() Kind        { return KindFloat }
func (c *FloatColumn) Len() int          { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool { return c.nulls[i] }
func (c *FloatColumn) Get(i int) (float64, bool) {
	return c.data[i], !c.nulls[i]
}
func (c *FloatColumn) Value(i int) (any, bool) {
	return c.data[i], !c.nulls[i]
}
func (c *FloatColumn) appendNull() {
	c.data = append(c.data, 0)
	c.nulls = append(c.nulls, true)
}
func (c *FloatColumn) appendCell(raw string) {
	if raw == "" {
		c.appendNull()
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.appendNull()
		return
	}
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func (c *StringColumn) Name() string      { return c.name }
func (c *StringColumn) Kind() Kind        { return KindString }
func (c *StringColumn) Len() int          { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool { return c.nulls[i] }
func (c *StringColumn) Get(i int) (string, bool) {
	return c.data[i], !c.nulls[i]
}
func (c *StringColumn) Value(i int) (any, bool) {
	return c.data[i], !c.nulls[i]
}
func (c *StringColumn) appendNull() {
	c.data = append(c.data, "")
	c.nulls = append(c.nulls, true)
}
func (c *StringColumn) appendCell(raw string) {
	if raw == "" {
		c.appendNull()
		return
	}
	c.data = append(c.data, raw)
	c.nulls = append(c.nulls, false)
}

// Frame is a columnar container for tabular data.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func New(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Fields)), index: make(map[string]int)}
	for i, fd := range s.Fields {
		switch fd.Kind {
		case KindBool:
			f.cols[i] = &BoolColumn{name: fd.Name}
		case KindInt:
			f.cols[i] = &IntColumn{name: fd.Name}
		case KindFloat:
			f.cols[i] = &FloatColumn{name: fd.Name}
		case KindString:
			f.cols[i] = &StringColumn{name: fd.Name}
		default:
			panic("invalid field kind")
		}
		f.index[fd.Name] = i
	}
	return f
}

func (f *Frame) Schema() Schema { return f.schema }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }

func (f *Frame) Column(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// AppendRecord appends one row. Cells parse according to their column kind;
// unparseable or empty cells become nulls, and a short record is padded with
// nulls on the right. Extra cells beyond the schema are ignored.
func (f *Frame) AppendRecord(rec []string) {
	for i, c := range f.cols {
		if i >= len(rec) {
			c.appendNull()
			continue
		}
		c.appendCell(rec[i])
	}
	f.nrows++
}

// Row extracts row i as a map of non-null cells keyed by column name.
func (f *Frame) Row(i int) map[string]any {
	m := make(map[string]any, len(f.cols))
	for _, c := range f.cols {
		if v, ok := c.Value(i); ok {
			m[c.Name()] = v
		}
	}
	return m
}
