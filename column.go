package encryptedframe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
)

// Output column suffixes.
const (
	suffixEncrypted = "_encrypted"
	suffixNonce     = "_nonce"
	suffixDecrypted = "_decrypted"
	suffixErrors    = "_decryption_errors"
)

// EncryptedName returns the ciphertext column name for a source column.
func EncryptedName(column string) string { return column + suffixEncrypted }

// NonceName returns the nonce column name for a source column.
func NonceName(column string) string { return column + suffixNonce }

// DecryptedName returns the plaintext column name for a ciphertext column.
// A trailing "_encrypted" is dropped, so "msg_encrypted" decrypts to "msg_decrypted".
func DecryptedName(ciphertextColumn string) string {
	return baseName(ciphertextColumn) + suffixDecrypted
}

// ErrorsName returns the decryption errors column name for a ciphertext column.
func ErrorsName(ciphertextColumn string) string {
	return baseName(ciphertextColumn) + suffixErrors
}

func baseName(ciphertextColumn string) string {
	if base, ok := strings.CutSuffix(ciphertextColumn, suffixEncrypted); ok && base != "" {
		return base
	}
	return ciphertextColumn
}

// textColumn is a read-only text view over an Arrow column.
type textColumn struct {
	len    int
	isNull func(i int) bool
	value  func(i int) string
}

func (t *textColumn) at(i int) *string {
	if t.isNull(i) {
		return nil
	}
	v := t.value(i)
	return &v
}

// asText coerces a column to text without copying its buffers.
// Integers are rendered in base 10, floats in shortest round-trip form,
// booleans as true/false and binary values as their raw bytes.
func asText(arr arrow.Array) (*textColumn, error) {
	t := &textColumn{len: arr.Len(), isNull: arr.IsNull}

	switch a := arr.(type) {
	case *array.String:
		t.value = a.Value
	case *array.Binary:
		t.value = func(i int) string { return string(a.Value(i)) }
	case *array.Boolean:
		t.value = func(i int) string { return strconv.FormatBool(a.Value(i)) }
	case *array.Int8:
		t.value = func(i int) string { return strconv.FormatInt(int64(a.Value(i)), 10) }
	case *array.Int16:
		t.value = func(i int) string { return strconv.FormatInt(int64(a.Value(i)), 10) }
	case *array.Int32:
		t.value = func(i int) string { return strconv.FormatInt(int64(a.Value(i)), 10) }
	case *array.Int64:
		t.value = func(i int) string { return strconv.FormatInt(a.Value(i), 10) }
	case *array.Uint8:
		t.value = func(i int) string { return strconv.FormatUint(uint64(a.Value(i)), 10) }
	case *array.Uint16:
		t.value = func(i int) string { return strconv.FormatUint(uint64(a.Value(i)), 10) }
	case *array.Uint32:
		t.value = func(i int) string { return strconv.FormatUint(uint64(a.Value(i)), 10) }
	case *array.Uint64:
		t.value = func(i int) string { return strconv.FormatUint(a.Value(i), 10) }
	case *array.Float32:
		t.value = func(i int) string { return strconv.FormatFloat(float64(a.Value(i)), 'g', -1, 32) }
	case *array.Float64:
		t.value = func(i int) string { return strconv.FormatFloat(a.Value(i), 'g', -1, 64) }
	case *array.Null:
		// Null arrays carry no validity bitmap.
		t.isNull = func(int) bool { return true }
		t.value = func(int) string { return "" }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, arr.DataType().Name())
	}
	return t, nil
}

// columnCodec applies the cell cipher to whole columns with one key.
type columnCodec struct {
	key               *Key
	nonces            *NonceSource
	mem               memory.Allocator
	emptyStringAsNull bool
}

func (c *config) columnCodec(key *Key, nonces *NonceSource) *columnCodec {
	return &columnCodec{
		key:               key,
		nonces:            nonces,
		mem:               c.mem,
		emptyStringAsNull: c.emptyStringAsNull,
	}
}

// EncodeColumn encrypts every cell of col with key.
// Null cells yield null ciphertext and nonce; each other cell gets a fresh nonce.
// The caller owns the returned arrays and must Release them.
func EncodeColumn(col arrow.Array, key *Key, opts ...Option) (ciphertexts, nonces *array.String, err error) {
	cfg := newConfig(opts)
	return cfg.columnCodec(key, NewNonceSource(cfg.random)).encode(col)
}

func (c *columnCodec) encode(col arrow.Array) (*array.String, *array.String, error) {
	text, err := asText(col)
	if err != nil {
		return nil, nil, err
	}

	ctBuilder := array.NewStringBuilder(c.mem)
	defer ctBuilder.Release()
	nonceBuilder := array.NewStringBuilder(c.mem)
	defer nonceBuilder.Release()
	ctBuilder.Reserve(text.len)
	nonceBuilder.Reserve(text.len)

	for i := 0; i < text.len; i++ {
		value := text.at(i)
		if value != nil && c.emptyStringAsNull && *value == "" {
			value = nil
		}

		rec, err := EncryptCell(c.key, c.nonces, value)
		if err != nil {
			return nil, nil, err
		}
		appendNullable(ctBuilder, rec.Ciphertext)
		appendNullable(nonceBuilder, rec.Nonce)
	}

	return ctBuilder.NewStringArray(), nonceBuilder.NewStringArray(), nil
}

// DecodedColumn holds the output of DecodeColumn.
type DecodedColumn struct {
	Plaintext *array.String
	Errors    *array.String
	Kinds     []ErrorKind // per row; KindNone unless the row failed
}

// Release releases both output arrays.
func (d *DecodedColumn) Release() {
	d.Plaintext.Release()
	d.Errors.Release()
}

// DecodeColumn decrypts paired nonce and ciphertext columns with key.
// Rows where both inputs are null decode to null with no error; a row with
// only one null input is a KindMissingInput failure.
// Both columns are coerced to text first. Per-row failures are recorded in
// Errors and Kinds, never returned; the error return is reserved for
// column-level problems (unsupported types, length mismatch).
func DecodeColumn(nonces, ciphertexts arrow.Array, key *Key, opts ...Option) (*DecodedColumn, error) {
	cfg := newConfig(opts)
	return cfg.columnCodec(key, nil).decode(nonces, ciphertexts)
}

func (c *columnCodec) decode(nonces, ciphertexts arrow.Array) (*DecodedColumn, error) {
	nonceText, err := asText(nonces)
	if err != nil {
		return nil, err
	}
	ctText, err := asText(ciphertexts)
	if err != nil {
		return nil, err
	}
	if nonceText.len != ctText.len {
		return nil, fmt.Errorf("%w: %d nonces, %d ciphertexts", ErrLengthMismatch, nonceText.len, ctText.len)
	}

	ptBuilder := array.NewStringBuilder(c.mem)
	defer ptBuilder.Release()
	errBuilder := array.NewStringBuilder(c.mem)
	defer errBuilder.Release()
	ptBuilder.Reserve(ctText.len)
	errBuilder.Reserve(ctText.len)

	kinds := make([]ErrorKind, ctText.len)
	for i := 0; i < ctText.len; i++ {
		rec := DecryptCell(c.key, nonceText.at(i), ctText.at(i))
		kinds[i] = rec.Kind
		if rec.Kind != KindNone {
			ptBuilder.AppendNull()
			errBuilder.Append(rec.Kind.String())
			continue
		}
		appendNullable(ptBuilder, rec.Plaintext)
		errBuilder.AppendNull()
	}

	return &DecodedColumn{
		Plaintext: ptBuilder.NewStringArray(),
		Errors:    errBuilder.NewStringArray(),
		Kinds:     kinds,
	}, nil
}

func appendNullable(b *array.StringBuilder, v *string) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}
