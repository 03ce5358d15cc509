package encryptedframe

import (
	"fmt"

	"github.com/apache/arrow/go/v7/arrow"
	"golang.org/x/sync/errgroup"
)

// Codec encrypts and decrypts record columns in parallel row chunks.
// It is safe for concurrent use.
type Codec struct {
	config *config
	nonces *NonceSource
}

// New creates a Codec with the given options.
//
// Example:
//
//	codec := encryptedframe.New(
//	    encryptedframe.WithWorkers(8),
//	    encryptedframe.WithLogger(slog.Default()),
//	)
func New(opts ...Option) *Codec {
	cfg := newConfig(opts)
	return &Codec{
		config: cfg,
		nonces: NewNonceSource(cfg.random),
	}
}

var defaultCodec = New()

// EncryptColumn encrypts one column of rec using a default Codec.
func EncryptColumn(rec arrow.Record, column, passphrase string) (arrow.Record, error) {
	return defaultCodec.EncryptColumn(rec, column, passphrase)
}

// DecryptColumns decrypts a ciphertext/nonce column pair of rec using a default Codec.
func DecryptColumns(rec arrow.Record, ciphertextColumn, nonceColumn, passphrase string) (arrow.Record, error) {
	return defaultCodec.DecryptColumns(rec, ciphertextColumn, nonceColumn, passphrase)
}

// chunkResult is the output of one worker.
type chunkResult struct {
	rec   arrow.Record
	kinds []ErrorKind
}

// EncryptColumn encrypts the named column and returns a new record with the
// columns <column>_encrypted and <column>_nonce, row-aligned with rec.
// rec is not modified. The caller owns the result and must Release it.
//
// Returns ErrColumnNotFound before any work starts if the column is absent.
func (c *Codec) EncryptColumn(rec arrow.Record, column, passphrase string) (arrow.Record, error) {
	idx, err := columnIndex(rec, column)
	if err != nil {
		return nil, err
	}

	key := DeriveKey(passphrase)
	defer key.Zero()

	names := []string{EncryptedName(column), NonceName(column)}
	codec := c.config.columnCodec(key, c.nonces)

	out, _, err := c.run(rec, "encrypt", func(sub arrow.Record) (chunkResult, error) {
		ciphertexts, nonces, err := codec.encode(sub.Column(idx))
		if err != nil {
			return chunkResult{}, err
		}
		defer ciphertexts.Release()
		defer nonces.Release()
		return chunkResult{rec: stringRecord(names, ciphertexts, nonces)}, nil
	})
	return out, err
}

// DecryptColumns decrypts the ciphertext column with the nonce column and
// returns a new record with <base>_decrypted and <base>_decryption_errors,
// where base is the ciphertext column name without its "_encrypted" suffix.
//
// Rows that fail to decrypt hold a null plaintext and an error message;
// they never fail the call.
func (c *Codec) DecryptColumns(rec arrow.Record, ciphertextColumn, nonceColumn, passphrase string) (arrow.Record, error) {
	out, _, err := c.DecryptColumnsDetailed(rec, ciphertextColumn, nonceColumn, passphrase)
	return out, err
}

// DecryptColumnsDetailed is DecryptColumns that also returns the error kind of every row,
// so callers can branch on the failure class instead of parsing messages.
func (c *Codec) DecryptColumnsDetailed(rec arrow.Record, ciphertextColumn, nonceColumn, passphrase string) (arrow.Record, []ErrorKind, error) {
	ctIdx, err := columnIndex(rec, ciphertextColumn)
	if err != nil {
		return nil, nil, err
	}
	nonceIdx, err := columnIndex(rec, nonceColumn)
	if err != nil {
		return nil, nil, err
	}

	key := DeriveKey(passphrase)
	defer key.Zero()

	names := []string{DecryptedName(ciphertextColumn), ErrorsName(ciphertextColumn)}
	codec := c.config.columnCodec(key, nil)

	return c.run(rec, "decrypt", func(sub arrow.Record) (chunkResult, error) {
		decoded, err := codec.decode(sub.Column(nonceIdx), sub.Column(ctIdx))
		if err != nil {
			return chunkResult{}, err
		}
		defer decoded.Release()
		return chunkResult{
			rec:   stringRecord(names, decoded.Plaintext, decoded.Errors),
			kinds: decoded.Kinds,
		}, nil
	})
}

// run splits rec into row chunks, applies work to each chunk concurrently and
// concatenates the outputs in chunk order. Any chunk error fails the whole call.
func (c *Codec) run(rec arrow.Record, op string, work func(sub arrow.Record) (chunkResult, error)) (arrow.Record, []ErrorKind, error) {
	chunks := splitOffsets(rec.NumRows(), c.config.workerCount())
	results := make([]chunkResult, len(chunks))
	log := c.config.logger.With("op", op)

	log.Debug("dispatching chunks", "rows", rec.NumRows(), "chunks", len(chunks))

	var g errgroup.Group
	for i, ch := range chunks {
		g.Go(func() error {
			sub := rec.NewSlice(ch.offset, ch.offset+ch.length)
			defer sub.Release()

			res, err := work(sub)
			if err != nil {
				return fmt.Errorf("chunk %d [%d, %d): %w", i, ch.offset, ch.offset+ch.length, err)
			}
			results[i] = res
			return nil
		})
	}

	waitErr := g.Wait()

	recs := make([]arrow.Record, 0, len(results))
	for _, res := range results {
		if res.rec != nil {
			recs = append(recs, res.rec)
		}
	}
	defer func() {
		for _, r := range recs {
			r.Release()
		}
	}()

	if waitErr != nil {
		log.Debug("chunk failed", "error", waitErr)
		return nil, nil, waitErr
	}

	out, err := concatRecords(recs, c.config.mem)
	if err != nil {
		return nil, nil, err
	}

	var kinds []ErrorKind
	for _, res := range results {
		kinds = append(kinds, res.kinds...)
	}

	log.Debug("chunks joined", "rows", out.NumRows())
	return out, kinds, nil
}
