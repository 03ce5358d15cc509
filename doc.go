// Package encryptedframe provides column-level authenticated encryption for
// Apache Arrow records, processed in parallel row chunks.
//
// One column of a record is encrypted cell by cell. The result is a new
// record holding a ciphertext column and a nonce column, row-aligned with the
// input. Decryption takes both columns back and yields a plaintext column and
// a decryption errors column.
//
// # Encryption
//
// Cells are encrypted with XSalsa20-Poly1305 (NaCl secretbox) under a fresh
// 24-byte random nonce. Ciphertexts and nonces are stored as lowercase hex
// text, so they fit in ordinary string columns.
//
// The 32-byte key is derived from a passphrase with Argon2id once per call
// and zeroed when the call returns.
//
// IMPORTANT: the Argon2 salt is a fixed constant. The same passphrase yields
// the same key for every dataset, so security depends entirely on passphrase
// strength. The salt is kept fixed for compatibility with existing data.
//
// # Basic Usage
//
//	codec := encryptedframe.New()
//
//	// Encrypt: returns msg_encrypted and msg_nonce
//	enc, err := codec.EncryptColumn(rec, "msg", passphrase)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer enc.Release()
//
//	// Decrypt: returns msg_decrypted and msg_decryption_errors
//	dec, err := codec.DecryptColumns(enc, "msg_encrypted", "msg_nonce", passphrase)
//
// # Parallelism
//
// Rows are split into as many contiguous chunks as there are workers
// (runtime.GOMAXPROCS by default, see WithWorkers). Each chunk is a zero-copy
// slice of the input and is processed by its own goroutine. Outputs are
// concatenated in chunk order after all chunks finish.
//
// # Errors
//
// Two tiers:
//   - Call errors (ErrColumnNotFound, ErrUnsupportedType, ErrNonceSource,
//     ErrLengthMismatch) fail the whole call and no record is returned.
//   - Cell errors never fail a call. The row gets a null plaintext and a
//     message in the errors column. DecryptColumnsDetailed also returns the
//     ErrorKind of every row.
//
// # NULL Handling
//
// NULL values are preserved:
//   - a null cell encrypts to a null ciphertext and a null nonce
//   - a row where both are null decrypts to null with no error
//   - a row where only one is null decrypts to null with KindMissingInput
//
// Empty strings are encrypted by default. Use WithEmptyStringAsNull() to treat
// empty strings as NULL.
package encryptedframe
