package tableio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/parquet-go/parquet-go"
)

// ReadParquet loads a Parquet file into a record of utf8 columns, one per
// top-level schema field, in schema order. Values are rendered with fmt;
// byte slices as their raw bytes.
func ReadParquet(path string, mem memory.Allocator) (arrow.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tableio: open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("tableio: stat %s: %w", path, err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("tableio: open parquet %s: %w", path, err)
	}

	fields := pqFile.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}

	cols := newStringColumns(names, mem)
	defer cols.release()

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	for {
		row := make(map[string]interface{})
		err := reader.Read(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tableio: read parquet row %d: %w", cols.rows+1, err)
		}
		for i, name := range names {
			text, ok := parquetText(row[name])
			if !ok {
				cols.builders[i].AppendNull()
				continue
			}
			cols.builders[i].Append(text)
		}
		cols.rows++
	}

	return cols.record(), nil
}

func parquetText(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return fmt.Sprint(t), true
	}
}
