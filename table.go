package encryptedframe

import (
	"fmt"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
)

// columnIndex resolves a column by name. Names are assumed unique; the first match wins.
func columnIndex(rec arrow.Record, name string) (int, error) {
	indices := rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return indices[0], nil
}

// stringRecord assembles a record of nullable utf8 columns.
// The record retains the arrays; the caller keeps its own references.
func stringRecord(names []string, cols ...*array.String) arrow.Record {
	fields := make([]arrow.Field, len(names))
	arrs := make([]arrow.Array, len(cols))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
		arrs[i] = cols[i]
	}

	var rows int64
	if len(cols) > 0 {
		rows = int64(cols[0].Len())
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), arrs, rows)
}

// concatRecords vertically concatenates records sharing one schema, in order.
// The inputs are not released.
func concatRecords(recs []arrow.Record, mem memory.Allocator) (arrow.Record, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("encryptedframe: nothing to concatenate")
	}

	// Empty chunks are skipped.
	nonEmpty := make([]arrow.Record, 0, len(recs))
	for _, rec := range recs {
		if rec.NumRows() > 0 {
			nonEmpty = append(nonEmpty, rec)
		}
	}
	switch len(nonEmpty) {
	case 0:
		recs[0].Retain()
		return recs[0], nil
	case 1:
		nonEmpty[0].Retain()
		return nonEmpty[0], nil
	}
	recs = nonEmpty

	schema := recs[0].Schema()
	ncols := len(schema.Fields())
	cols := make([]arrow.Array, 0, ncols)
	defer func() {
		for _, col := range cols {
			col.Release()
		}
	}()

	var rows int64
	for _, rec := range recs {
		rows += rec.NumRows()
	}

	parts := make([]arrow.Array, len(recs))
	for j := 0; j < ncols; j++ {
		for i, rec := range recs {
			parts[i] = rec.Column(j)
		}
		col, err := array.Concatenate(parts, mem)
		if err != nil {
			return nil, fmt.Errorf("encryptedframe: concatenate column %q: %w", schema.Field(j).Name, err)
		}
		cols = append(cols, col)
	}

	return array.NewRecord(schema, cols, rows), nil
}
