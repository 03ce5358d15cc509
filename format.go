package encryptedframe

import "encoding/hex"

// Stored cell format:
//
//	<name>_nonce:     lowercase hex of the 24-byte nonce (48 chars)
//	<name>_encrypted: lowercase hex of [tag:16][xsalsa20 ciphertext:len(plaintext)]
//
// No separators, no prefix. Decoding accepts either hex case.

func encodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrDecodeFailed
	}
	return b, nil
}

// decodeNonce decodes a hex nonce and checks its length.
func decodeNonce(s string) (*Nonce, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) != nonceSize {
		return nil, ErrDecodeFailed
	}
	var nonce Nonce
	copy(nonce[:], b)
	return &nonce, nil
}
