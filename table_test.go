package encryptedframe

import (
	"testing"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/stretchr/testify/require"
)

func TestColumnIndex(t *testing.T) {
	rec := newRecord(t, []string{"a", "b"}, []*string{ptr("1")}, []*string{ptr("2")})
	defer rec.Release()

	idx, err := columnIndex(rec, "b")
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	_, err = columnIndex(rec, "c")
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestConcatRecords_Order(t *testing.T) {
	names := []string{"x", "y"}
	r1 := newRecord(t, names, []*string{ptr("1"), nil}, []*string{ptr("a"), ptr("b")})
	defer r1.Release()
	empty := newRecord(t, names, []*string{}, []*string{})
	defer empty.Release()
	r2 := newRecord(t, names, []*string{ptr("3")}, []*string{nil})
	defer r2.Release()

	out, err := concatRecords([]arrow.Record{r1, empty, r2}, memory.DefaultAllocator)
	require.NoError(t, err)
	defer out.Release()

	require.EqualValues(t, 3, out.NumRows())
	require.Equal(t, []*string{ptr("1"), nil, ptr("3")}, values(t, out.Column(0)))
	require.Equal(t, []*string{ptr("a"), ptr("b"), nil}, values(t, out.Column(1)))
}

func TestConcatRecords_AllEmpty(t *testing.T) {
	names := []string{"x"}
	e1 := newRecord(t, names, []*string{})
	defer e1.Release()
	e2 := newRecord(t, names, []*string{})
	defer e2.Release()

	out, err := concatRecords([]arrow.Record{e1, e2}, memory.DefaultAllocator)
	require.NoError(t, err)
	defer out.Release()
	require.EqualValues(t, 0, out.NumRows())
	require.Equal(t, "x", out.ColumnName(0))
}

func TestConcatRecords_None(t *testing.T) {
	_, err := concatRecords(nil, memory.DefaultAllocator)
	require.Error(t, err)
}
