package encryptedframe

import (
	"testing"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/stretchr/testify/require"
)

func testKey(id string) *Key {
	// Deterministic 32-byte key without paying for Argon2
	var key Key
	copy(key[:], id)
	for i := len(id); i < keySize; i++ {
		key[i] = byte(i)
	}
	return &key
}

func ptr(s string) *string { return &s }

// newStringArray builds a utf8 array; nil entries become nulls.
func newStringArray(t testing.TB, values []*string) *array.String {
	t.Helper()
	b := array.NewStringBuilder(memory.DefaultAllocator)
	defer b.Release()
	for _, v := range values {
		appendNullable(b, v)
	}
	return b.NewStringArray()
}

// newRecord builds a record from named nullable string columns of equal length.
func newRecord(t testing.TB, names []string, columns ...[]*string) arrow.Record {
	t.Helper()
	require.Len(t, columns, len(names))
	arrs := make([]*array.String, len(columns))
	for i, col := range columns {
		arrs[i] = newStringArray(t, col)
		defer arrs[i].Release()
	}
	return stringRecord(names, arrs...)
}

// values returns the cells of a utf8 column; nulls as nil.
func values(t testing.TB, col arrow.Array) []*string {
	t.Helper()
	s, ok := col.(*array.String)
	require.True(t, ok, "expected *array.String, got %T", col)
	out := make([]*string, s.Len())
	for i := range out {
		if s.IsValid(i) {
			out[i] = ptr(s.Value(i))
		}
	}
	return out
}

// column returns the named column of rec.
func column(t testing.TB, rec arrow.Record, name string) arrow.Array {
	t.Helper()
	idx, err := columnIndex(rec, name)
	require.NoError(t, err)
	return rec.Column(idx)
}
