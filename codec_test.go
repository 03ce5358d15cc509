package encryptedframe

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/stretchr/testify/require"
)

func TestCodec_EndToEnd(t *testing.T) {
	in := newRecord(t, []string{"msg"}, []*string{ptr("hello"), nil, ptr("world")})
	defer in.Release()

	codec := New()
	enc, err := codec.EncryptColumn(in, "msg", "pw123")
	require.NoError(t, err)
	defer enc.Release()

	require.EqualValues(t, 3, enc.NumRows())
	require.Equal(t, "msg_encrypted", enc.ColumnName(0))
	require.Equal(t, "msg_nonce", enc.ColumnName(1))

	cts := values(t, column(t, enc, "msg_encrypted"))
	nonces := values(t, column(t, enc, "msg_nonce"))
	require.Nil(t, cts[1])
	require.Nil(t, nonces[1])
	require.NotNil(t, cts[0])
	require.NotNil(t, cts[2])
	require.NotEqual(t, *cts[0], *cts[2])
	require.NotEqual(t, *nonces[0], *nonces[2])

	dec, err := codec.DecryptColumns(enc, "msg_encrypted", "msg_nonce", "pw123")
	require.NoError(t, err)
	defer dec.Release()

	require.Equal(t, "msg_decrypted", dec.ColumnName(0))
	require.Equal(t, "msg_decryption_errors", dec.ColumnName(1))
	require.Equal(t, []*string{ptr("hello"), nil, ptr("world")}, values(t, column(t, dec, "msg_decrypted")))
	require.Equal(t, []*string{nil, nil, nil}, values(t, column(t, dec, "msg_decryption_errors")))
}

func TestCodec_InputNotMutated(t *testing.T) {
	in := newRecord(t, []string{"msg", "other"},
		[]*string{ptr("a"), ptr("b")},
		[]*string{ptr("x"), nil})
	defer in.Release()

	enc, err := New(WithWorkers(2)).EncryptColumn(in, "msg", "pw")
	require.NoError(t, err)
	defer enc.Release()

	require.EqualValues(t, 2, in.NumCols())
	require.Equal(t, []*string{ptr("a"), ptr("b")}, values(t, column(t, in, "msg")))
	require.Equal(t, []*string{ptr("x"), nil}, values(t, column(t, in, "other")))

	// Only derived columns are returned
	require.EqualValues(t, 2, enc.NumCols())
}

func TestCodec_Tamper(t *testing.T) {
	in := newRecord(t, []string{"msg"}, []*string{ptr("one"), ptr("two"), ptr("three")})
	defer in.Release()

	codec := New(WithWorkers(2))
	enc, err := codec.EncryptColumn(in, "msg", "pw123")
	require.NoError(t, err)
	defer enc.Release()

	// Flip one hex character of row 1's ciphertext
	cts := values(t, column(t, enc, "msg_encrypted"))
	flipped := []byte(*cts[1])
	if flipped[0] == '0' {
		flipped[0] = '1'
	} else {
		flipped[0] = '0'
	}
	cts[1] = ptr(string(flipped))

	ctCol := newStringArray(t, cts)
	defer ctCol.Release()
	nonceCol := column(t, enc, "msg_nonce").(*array.String)
	tampered := stringRecord([]string{"msg_encrypted", "msg_nonce"}, ctCol, nonceCol)
	defer tampered.Release()

	dec, kinds, err := codec.DecryptColumnsDetailed(tampered, "msg_encrypted", "msg_nonce", "pw123")
	require.NoError(t, err)
	defer dec.Release()

	require.Equal(t, []*string{ptr("one"), nil, ptr("three")}, values(t, column(t, dec, "msg_decrypted")))
	require.Equal(t, []*string{nil, ptr("decryption failed"), nil}, values(t, column(t, dec, "msg_decryption_errors")))
	require.Equal(t, []ErrorKind{KindNone, KindAuthFailure, KindNone}, kinds)
}

func TestCodec_WrongPassphrase(t *testing.T) {
	in := newRecord(t, []string{"msg"}, []*string{ptr("a"), nil, ptr("c")})
	defer in.Release()

	enc, err := EncryptColumn(in, "msg", "right")
	require.NoError(t, err)
	defer enc.Release()

	dec, kinds, err := New().DecryptColumnsDetailed(enc, "msg_encrypted", "msg_nonce", "wrong")
	require.NoError(t, err, "cell failures must not fail the call")
	defer dec.Release()

	require.Equal(t, []*string{nil, nil, nil}, values(t, column(t, dec, "msg_decrypted")))
	require.Equal(t, []ErrorKind{KindAuthFailure, KindNone, KindAuthFailure}, kinds)
}

func TestCodec_ColumnNotFound(t *testing.T) {
	in := newRecord(t, []string{"msg"}, []*string{ptr("a")})
	defer in.Release()

	// A failing nonce source proves no work was dispatched
	codec := New(WithRandom(failingReader{}))

	_, err := codec.EncryptColumn(in, "nope", "pw")
	require.ErrorIs(t, err, ErrColumnNotFound)
	require.ErrorContains(t, err, `"nope"`)

	_, err = codec.DecryptColumns(in, "nope", "msg", "pw")
	require.ErrorIs(t, err, ErrColumnNotFound)

	_, err = codec.DecryptColumns(in, "msg", "nope", "pw")
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestCodec_ChunkFailureAbortsCall(t *testing.T) {
	rows := make([]*string, 10)
	for i := range rows {
		rows[i] = ptr(fmt.Sprint(i))
	}
	in := newRecord(t, []string{"msg"}, rows)
	defer in.Release()

	out, err := New(WithWorkers(3), WithRandom(failingReader{})).EncryptColumn(in, "msg", "pw")
	require.ErrorIs(t, err, ErrNonceSource)
	require.ErrorContains(t, err, "chunk")
	require.Nil(t, out)
}

func TestCodec_UnsupportedTypeAbortsCall(t *testing.T) {
	mem := memory.DefaultAllocator
	b := array.NewDate32Builder(mem)
	b.AppendValues([]arrow.Date32{1, 2, 3}, nil)
	dates := b.NewArray()
	b.Release()
	defer dates.Release()

	schema := arrow.NewSchema([]arrow.Field{{Name: "day", Type: arrow.FixedWidthTypes.Date32, Nullable: true}}, nil)
	in := array.NewRecord(schema, []arrow.Array{dates}, 3)
	defer in.Release()

	_, err := New(WithWorkers(2)).EncryptColumn(in, "day", "pw")
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestCodec_ChunkingPreservesOrder(t *testing.T) {
	for _, n := range []int{0, 1, 7, 33} {
		for _, workers := range []int{1, 3, 8} {
			t.Run(fmt.Sprintf("rows=%d/workers=%d", n, workers), func(t *testing.T) {
				rows := make([]*string, n)
				for i := range rows {
					if i%5 == 4 {
						continue // sprinkle nulls
					}
					rows[i] = ptr(fmt.Sprintf("row-%03d", i))
				}
				in := newRecord(t, []string{"v"}, rows)
				defer in.Release()

				codec := New(WithWorkers(workers))
				enc, err := codec.EncryptColumn(in, "v", "pw")
				require.NoError(t, err)
				defer enc.Release()
				require.EqualValues(t, n, enc.NumRows())

				dec, kinds, err := codec.DecryptColumnsDetailed(enc, "v_encrypted", "v_nonce", "pw")
				require.NoError(t, err)
				defer dec.Release()

				require.EqualValues(t, n, dec.NumRows())
				require.Len(t, kinds, n)
				require.Equal(t, rows, values(t, column(t, dec, "v_decrypted")))
			})
		}
	}
}

func TestCodec_DecryptNonTextColumns(t *testing.T) {
	// Hex stored in a binary column decodes the same as in a string column
	in := newRecord(t, []string{"msg"}, []*string{ptr("hello")})
	defer in.Release()

	enc, err := EncryptColumn(in, "msg", "pw")
	require.NoError(t, err)
	defer enc.Release()

	nb := array.NewBinaryBuilder(memory.DefaultAllocator, arrow.BinaryTypes.Binary)
	nb.Append([]byte(column(t, enc, "msg_nonce").(*array.String).Value(0)))
	binNonces := nb.NewArray()
	nb.Release()
	defer binNonces.Release()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "msg_encrypted", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "msg_nonce", Type: arrow.BinaryTypes.Binary, Nullable: true},
	}, nil)
	mixed := array.NewRecord(schema, []arrow.Array{column(t, enc, "msg_encrypted"), binNonces}, 1)
	defer mixed.Release()

	dec, err := DecryptColumns(mixed, "msg_encrypted", "msg_nonce", "pw")
	require.NoError(t, err)
	defer dec.Release()
	require.Equal(t, []*string{ptr("hello")}, values(t, column(t, dec, "msg_decrypted")))
}

func TestCodec_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	in := newRecord(t, []string{"msg"}, []*string{ptr("a"), ptr("b")})
	defer in.Release()

	enc, err := New(WithLogger(logger), WithWorkers(2)).EncryptColumn(in, "msg", "pw")
	require.NoError(t, err)
	defer enc.Release()

	require.Contains(t, buf.String(), "dispatching chunks")
	require.Contains(t, buf.String(), "chunks=2")
	require.Contains(t, buf.String(), "chunks joined")
	require.NotContains(t, buf.String(), "pw", "passphrase must never be logged")
}

func TestCodec_ConcurrentCalls(t *testing.T) {
	codec := New(WithWorkers(4))
	in := newRecord(t, []string{"msg"}, []*string{ptr("a"), ptr("b"), ptr("c"), ptr("d"), ptr("e")})
	defer in.Release()

	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			out, err := codec.EncryptColumn(in, "msg", "pw")
			if err == nil {
				out.Release()
			}
			errs <- err
		}()
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-errs)
	}
}
