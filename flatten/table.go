package flatten

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Value is one cell of a parsed row. A null value renders as an empty field.
type Value struct {
	text string
	null bool
}

func Null() Value {
	return Value{null: true}
}

func Text(s string) Value {
	return Value{text: s}
}

// valueOf keeps the source textual form of numbers and booleans so rows are
// reproducible byte for byte. Missing keys and JSON null become Null.
func valueOf(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.String:
		return Text(r.Str)
	default:
		return Text(r.Raw)
	}
}

func (v Value) IsNull() bool {
	return v.null
}

func (v Value) String() string {
	return v.text
}

type Row []Value

// Table is a fixed-schema set of rows. Every row has exactly the arity and
// column order of Header.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}

func newTable(name string, header []string) *Table {
	return &Table{Name: name, Header: header}
}

// add appends a row. A row not matching the header arity is a projection bug
// and panics.
func (t *Table) add(row ...Value) {
	if len(row) != len(t.Header) {
		panic(fmt.Sprintf("table %s: row has %d values, header has %d columns", t.Name, len(row), len(t.Header)))
	}
	t.Rows = append(t.Rows, Row(row))
}

// Records renders the header followed by every row as strings.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Header)
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = v.String()
		}
		out = append(out, rec)
	}
	return out
}

// project extracts paths from doc in order.
func project(doc gjson.Result, paths ...string) []Value {
	out := make([]Value, len(paths))
	for i, p := range paths {
		out[i] = valueOf(doc.Get(p))
	}
	return out
}
