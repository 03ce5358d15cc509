package encryptedframe

import "errors"

var (
	// ErrColumnNotFound indicates the named column is not present in the input record.
	ErrColumnNotFound = errors.New("encryptedframe: column not found")

	// ErrUnsupportedType indicates a column type that cannot be coerced to text.
	ErrUnsupportedType = errors.New("encryptedframe: unsupported column type")

	// ErrLengthMismatch indicates the nonce and ciphertext columns have different lengths.
	ErrLengthMismatch = errors.New("encryptedframe: nonce and ciphertext columns differ in length")

	// ErrNonceSource indicates the random source failed to produce a full nonce.
	ErrNonceSource = errors.New("encryptedframe: nonce source failed")

	// ErrMissingInput indicates a nonce or ciphertext cell was null.
	ErrMissingInput = errors.New("encryptedframe: nonce or ciphertext is missing")

	// ErrDecodeFailed indicates a nonce or ciphertext cell was not valid hex of the expected size.
	ErrDecodeFailed = errors.New("encryptedframe: decoding nonce or ciphertext failed")

	// ErrDecryptionFailed indicates secretbox authentication failed (wrong key, wrong nonce or corrupted data).
	ErrDecryptionFailed = errors.New("encryptedframe: decryption failed")

	// ErrInvalidText indicates the decrypted bytes are not valid UTF-8.
	ErrInvalidText = errors.New("encryptedframe: decrypted bytes are not valid text")
)

// ErrorKind classifies a per-cell decryption failure.
// Per-cell failures never abort a call; they are recorded next to a null result.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindMissingInput
	KindDecodeFailure
	KindAuthFailure
	KindTextEncodingFailure
)

// String returns the message written to the decryption errors column.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return ""
	case KindMissingInput:
		return "nonce or ciphertext is missing"
	case KindDecodeFailure:
		return "decoding nonce or ciphertext failed"
	case KindAuthFailure:
		return "decryption failed"
	case KindTextEncodingFailure:
		return "decrypted bytes are not valid text"
	default:
		return "unknown error"
	}
}

// Err returns the sentinel error for the kind, or nil for KindNone.
func (k ErrorKind) Err() error {
	switch k {
	case KindMissingInput:
		return ErrMissingInput
	case KindDecodeFailure:
		return ErrDecodeFailed
	case KindAuthFailure:
		return ErrDecryptionFailed
	case KindTextEncodingFailure:
		return ErrInvalidText
	default:
		return nil
	}
}

// KindOf maps a per-cell sentinel error to its kind.
// Errors that are not per-cell failures map to KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingInput):
		return KindMissingInput
	case errors.Is(err, ErrDecodeFailed):
		return KindDecodeFailure
	case errors.Is(err, ErrDecryptionFailed):
		return KindAuthFailure
	case errors.Is(err, ErrInvalidText):
		return KindTextEncodingFailure
	default:
		return KindNone
	}
}
