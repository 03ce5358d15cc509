package encryptedframe

import "golang.org/x/crypto/argon2"

// Argon2id parameters. Time, memory and parallelism match the defaults of the
// Argon2 implementation that produced existing encrypted datasets, so keys
// stay compatible with them.
const (
	keySize      = 32
	argonTime    = 2
	argonMemory  = 19 * 1024 // KiB
	argonThreads = 1
)

// kdfSalt is fixed and not user controlled. Encryption strength therefore
// rests on the passphrase and the Argon2 cost alone: identical passphrases
// yield identical keys across datasets.
var kdfSalt = []byte("Q88pmcJzbz8hvnd0ISZ2eF0V3xwcBTHCF4Hj8tsOcX")

// Key is a 32-byte XSalsa20-Poly1305 key.
type Key [keySize]byte

// DeriveKey stretches a passphrase into a Key using Argon2id with the fixed salt.
// The same passphrase always yields the same key.
//
// argon2 panics if it cannot allocate its working memory; that aborts the
// operation rather than producing a weaker key.
func DeriveKey(passphrase string) *Key {
	raw := argon2.IDKey([]byte(passphrase), kdfSalt, argonTime, argonMemory, argonThreads, keySize)
	defer zeroBytes(raw)

	var key Key
	copy(key[:], raw)
	return &key
}

// Zero overwrites the key material.
func (k *Key) Zero() {
	if k == nil {
		return
	}
	zeroBytes(k[:])
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
