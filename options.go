package encryptedframe

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/apache/arrow/go/v7/arrow/memory"
)

// Option is a functional option for configuring a Codec.
type Option func(*config)

// config holds codec configuration options.
type config struct {
	workers           int
	random            io.Reader
	mem               memory.Allocator
	logger            *slog.Logger
	emptyStringAsNull bool
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		mem:    memory.DefaultAllocator,
		logger: slog.New(slog.DiscardHandler),
	}
}

func newConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// workerCount returns the number of row chunks processed concurrently.
func (c *config) workerCount() int {
	if c.workers >= 1 {
		return c.workers
	}
	return max(runtime.GOMAXPROCS(0), 1)
}

// WithWorkers sets the number of row chunks, and therefore goroutines, per call.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithRandom sets the random source for nonces.
// Default is crypto/rand. Other readers are serialised across workers.
func WithRandom(r io.Reader) Option {
	return func(c *config) {
		c.random = r
	}
}

// WithAllocator sets the Arrow allocator used for output columns.
func WithAllocator(mem memory.Allocator) Option {
	return func(c *config) {
		if mem != nil {
			c.mem = mem
		}
	}
}

// WithLogger sets a logger for chunk dispatch and join events (debug level).
// By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEmptyStringAsNull configures encryption to treat empty strings as NULL.
// By default, empty strings are encrypted like any other value.
func WithEmptyStringAsNull() Option {
	return func(c *config) {
		c.emptyStringAsNull = true
	}
}
