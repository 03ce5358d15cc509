package tableio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/klauspost/compress/zstd"
)

const (
	extParquet = ".parquet"
	extZstd    = ".zst"
)

// ReadFile loads a record from path.
// ".parquet" files are read as Parquet; anything else is CSV, zstd-decompressed
// when the name ends in ".zst".
func ReadFile(path string, mem memory.Allocator) (arrow.Record, error) {
	if strings.EqualFold(filepath.Ext(path), extParquet) {
		return ReadParquet(path, mem)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tableio: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if isZstd(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("tableio: zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	return ReadCSV(r, mem)
}

// WriteFile writes rec as CSV to path, zstd-compressed when the name ends in ".zst".
func WriteFile(path string, rec arrow.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tableio: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("tableio: close %s: %w", path, cerr)
		}
	}()

	if !isZstd(path) {
		return WriteCSV(f, rec)
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("tableio: zstd writer: %w", err)
	}
	if err := WriteCSV(enc, rec); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func isZstd(path string) bool {
	return strings.EqualFold(filepath.Ext(path), extZstd)
}
