package encryptedframe

import (
	"unicode/utf8"

	"golang.org/x/crypto/nacl/secretbox"
)

// Seal encrypts plaintext with XSalsa20-Poly1305 (NaCl secretbox).
// The 16-byte Poly1305 tag is prepended to the ciphertext.
func Seal(key *Key, nonce *Nonce, plaintext []byte) []byte {
	return secretbox.Seal(nil, plaintext, (*[nonceSize]byte)(nonce), (*[keySize]byte)(key))
}

// Open authenticates and decrypts a secretbox ciphertext.
// Returns ErrDecryptionFailed on a wrong key, wrong nonce or corrupted data.
func Open(key *Key, nonce *Nonce, ciphertext []byte) ([]byte, error) {
	plaintext, ok := secretbox.Open(nil, ciphertext, (*[nonceSize]byte)(nonce), (*[keySize]byte)(key))
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// SealString encrypts the UTF-8 bytes of s.
func SealString(key *Key, nonce *Nonce, s string) []byte {
	return Seal(key, nonce, []byte(s))
}

// OpenString decrypts to text.
// Returns ErrInvalidText if the plaintext is not valid UTF-8.
func OpenString(key *Key, nonce *Nonce, ciphertext []byte) (string, error) {
	plaintext, err := Open(key, nonce, ciphertext)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plaintext) {
		return "", ErrInvalidText
	}
	return string(plaintext), nil
}

// CipherRecord is the hex-encoded output for one encrypted cell.
// Both fields are nil iff the source cell was null.
type CipherRecord struct {
	Ciphertext *string
	Nonce      *string
}

// EncryptCell encrypts one nullable cell with a fresh nonce from src.
// Returns a nil pair if value is nil (NULL preservation).
func EncryptCell(key *Key, src *NonceSource, value *string) (CipherRecord, error) {
	if value == nil {
		return CipherRecord{}, nil
	}
	nonce, err := src.Next()
	if err != nil {
		return CipherRecord{}, err
	}
	ciphertext := encodeHex(SealString(key, &nonce, *value))
	nonceHex := encodeHex(nonce[:])
	return CipherRecord{Ciphertext: &ciphertext, Nonce: &nonceHex}, nil
}

// DecryptRecord is the result for one decrypted cell.
// For a pair with at least one non-null input, exactly one of Plaintext and a
// non-KindNone Kind is set. A fully null pair (a null source cell) leaves both unset.
type DecryptRecord struct {
	Plaintext *string
	Kind      ErrorKind
}

// Err returns the sentinel error for a failed cell, or nil.
func (r DecryptRecord) Err() error {
	return r.Kind.Err()
}

// DecryptCell decodes and decrypts one (nonce, ciphertext) pair of hex strings.
// Failures are classified, never returned: a bad row must not abort a column.
func DecryptCell(key *Key, nonceHex, ciphertextHex *string) DecryptRecord {
	if nonceHex == nil && ciphertextHex == nil {
		return DecryptRecord{} // NULL preservation
	}
	if nonceHex == nil || ciphertextHex == nil {
		return DecryptRecord{Kind: KindMissingInput}
	}

	nonce, nonceErr := decodeNonce(*nonceHex)
	ciphertext, ctErr := decodeHex(*ciphertextHex)
	if nonceErr != nil || ctErr != nil {
		return DecryptRecord{Kind: KindDecodeFailure}
	}

	plaintext, err := OpenString(key, nonce, ciphertext)
	if err != nil {
		return DecryptRecord{Kind: KindOf(err)}
	}
	return DecryptRecord{Plaintext: &plaintext}
}
