package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
)

// ErrNoHeader indicates the CSV input had no header row.
var ErrNoHeader = errors.New("tableio: missing CSV header")

// ErrUnsupportedType indicates a column that cannot be written as text.
var ErrUnsupportedType = errors.New("tableio: unsupported column type")

// ReadCSV reads a CSV stream with a header row into a record of utf8 columns.
// Empty fields are read as null.
func ReadCSV(r io.Reader, mem memory.Allocator) (arrow.Record, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("tableio: read header: %w", err)
	}
	names := append([]string(nil), header...)

	cols := newStringColumns(names, mem)
	defer cols.release()

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tableio: read row %d: %w", cols.rows+1, err)
		}
		for i, field := range fields {
			if field == "" {
				cols.builders[i].AppendNull()
				continue
			}
			cols.builders[i].Append(field)
		}
		cols.rows++
	}

	return cols.record(), nil
}

// WriteCSV writes rec with a header row. Nulls are written as empty fields.
func WriteCSV(w io.Writer, rec arrow.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, rec.NumCols())
	for i := range header {
		header[i] = rec.ColumnName(i)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("tableio: write header: %w", err)
	}

	cells, err := textColumns(rec)
	if err != nil {
		return err
	}

	row := make([]string, len(cells))
	for r := 0; r < int(rec.NumRows()); r++ {
		for c, cell := range cells {
			row[c], _ = cell(r)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("tableio: write row %d: %w", r+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cellFunc returns the text of row i and whether it is non-null.
type cellFunc func(i int) (string, bool)

func textColumns(rec arrow.Record) ([]cellFunc, error) {
	cells := make([]cellFunc, rec.NumCols())
	for i, col := range rec.Columns() {
		switch a := col.(type) {
		case *array.String:
			cells[i] = func(r int) (string, bool) {
				if a.IsNull(r) {
					return "", false
				}
				return a.Value(r), true
			}
		case *array.Binary:
			cells[i] = func(r int) (string, bool) {
				if a.IsNull(r) {
					return "", false
				}
				return string(a.Value(r)), true
			}
		default:
			return nil, fmt.Errorf("%w: column %q is %s", ErrUnsupportedType, rec.ColumnName(i), col.DataType().Name())
		}
	}
	return cells, nil
}

// stringColumns accumulates nullable utf8 columns row by row.
type stringColumns struct {
	names    []string
	builders []*array.StringBuilder
	rows     int64
}

func newStringColumns(names []string, mem memory.Allocator) *stringColumns {
	builders := make([]*array.StringBuilder, len(names))
	for i := range builders {
		builders[i] = array.NewStringBuilder(mem)
	}
	return &stringColumns{names: names, builders: builders}
}

func (s *stringColumns) record() arrow.Record {
	fields := make([]arrow.Field, len(s.names))
	arrs := make([]arrow.Array, len(s.builders))
	for i, b := range s.builders {
		fields[i] = arrow.Field{Name: s.names[i], Type: arrow.BinaryTypes.String, Nullable: true}
		arrs[i] = b.NewStringArray()
	}
	defer func() {
		for _, a := range arrs {
			a.Release()
		}
	}()
	return array.NewRecord(arrow.NewSchema(fields, nil), arrs, s.rows)
}

func (s *stringColumns) release() {
	for _, b := range s.builders {
		b.Release()
	}
}
