package tableio

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/olekukonko/tablewriter"
)

const nullText = "null"

// RenderTable writes rec as an aligned text table. limit > 0 caps the rows shown.
func RenderTable(w io.Writer, rec arrow.Record, limit int) error {
	cells, err := textColumns(rec)
	if err != nil {
		return err
	}

	header := make([]string, rec.NumCols())
	for i := range header {
		header[i] = rec.ColumnName(i)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	rows := int(rec.NumRows())
	shown := rows
	if limit > 0 && limit < rows {
		shown = limit
	}
	for r := 0; r < shown; r++ {
		line := make([]string, len(cells))
		for c, cell := range cells {
			text, ok := cell(r)
			if !ok {
				text = nullText
			}
			line[c] = text
		}
		table.Append(line)
	}
	if shown < rows {
		table.SetFooter(footer(len(header), fmt.Sprintf("%d more rows", rows-shown)))
	}

	table.Render()
	return nil
}

func footer(width int, note string) []string {
	f := make([]string, width)
	if width > 0 {
		f[width-1] = note
	}
	return f
}

// Merge places the columns of right after those of left.
// Both records must have the same number of rows.
func Merge(left, right arrow.Record) (arrow.Record, error) {
	if left.NumRows() != right.NumRows() {
		return nil, fmt.Errorf("tableio: cannot merge %d rows with %d rows", left.NumRows(), right.NumRows())
	}

	fields := append(append([]arrow.Field{}, left.Schema().Fields()...), right.Schema().Fields()...)
	cols := append(append([]arrow.Array{}, left.Columns()...), right.Columns()...)
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, left.NumRows()), nil
}
