package encryptedframe

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
)

const nonceSize = 24

// Nonce is a 24-byte XSalsa20 nonce. It is not secret and is stored next to the ciphertext.
type Nonce [nonceSize]byte

// NonceSource draws nonces from a random reader.
// It is safe for concurrent use by the workers of one call.
type NonceSource struct {
	mu     sync.Mutex
	r      io.Reader
	locked bool // caller-supplied readers are serialised
}

// NewNonceSource returns a source reading from r.
// A nil reader selects crypto/rand, which is already safe for concurrent use.
// Any other reader is guarded by a mutex so workers never share a partial read.
func NewNonceSource(r io.Reader) *NonceSource {
	if r == nil {
		return &NonceSource{r: rand.Reader}
	}
	return &NonceSource{r: r, locked: true}
}

// Next returns a fresh nonce.
// A failing or short read is returned as ErrNonceSource; it aborts the call.
func (s *NonceSource) Next() (Nonce, error) {
	var nonce Nonce
	if s.locked {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if _, err := io.ReadFull(s.r, nonce[:]); err != nil {
		return Nonce{}, fmt.Errorf("%w: %v", ErrNonceSource, err)
	}
	return nonce, nil
}
