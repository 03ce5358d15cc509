package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ai8future/encryptedframe"
	"github.com/ai8future/encryptedframe/internal/config"
	"github.com/ai8future/encryptedframe/internal/logging"
	"github.com/ai8future/encryptedframe/internal/tableio"
)

var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <encrypt|decrypt> [options] <input.csv|input.csv.zst|input.parquet>\n\n", os.Args[0])
	fmt.Fprintf(w, "Encrypts or decrypts one column of a table in parallel.\n")
	fmt.Fprintf(w, "The passphrase is read from ENCRYPTEDFRAME_PASSPHRASE (or a .env file).\n\n")
	fmt.Fprintf(w, "IMPORTANT: All flags must come BEFORE the input file.\n\n")
	fmt.Fprintf(w, "Examples:\n")
	fmt.Fprintf(w, "  %s encrypt -column email -out users_enc.csv users.csv\n", os.Args[0])
	fmt.Fprintf(w, "  %s decrypt -ciphertext email_encrypted -nonce email_nonce users_enc.csv\n", os.Args[0])
	fmt.Fprintf(w, "  %s encrypt -column email -keep -out users_enc.csv.zst users.parquet\n", os.Args[0])
}

func main() {
	if err := run(os.Args[1:], os.Stdout, clockwork.NewRealClock()); err != nil {
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// options are the flags shared by both subcommands.
type options struct {
	column     string
	ciphertext string
	nonce      string
	out        string
	keep       bool
	limit      int
	input      string
}

func parseArgs(args []string) (string, *options, error) {
	if len(args) == 0 {
		return "", nil, errUsage
	}
	cmd := args[0]

	opts := &options{}
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.out, "out", "", "Output file (.csv or .csv.zst); stdout table when empty")
	fs.BoolVar(&opts.keep, "keep", false, "Keep the input columns next to the derived columns")
	fs.IntVar(&opts.limit, "limit", 20, "Rows shown in stdout table output (0 = all)")

	switch cmd {
	case "encrypt":
		fs.StringVar(&opts.column, "column", "", "Column to encrypt")
	case "decrypt":
		fs.StringVar(&opts.ciphertext, "ciphertext", "", "Ciphertext column")
		fs.StringVar(&opts.nonce, "nonce", "", "Nonce column")
	default:
		return "", nil, fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return "", nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return "", nil, fmt.Errorf("%w: expected exactly one input file", errUsage)
	}
	opts.input = fs.Arg(0)

	if opts.limit < 0 {
		return "", nil, fmt.Errorf("-limit must be non-negative, got %d", opts.limit)
	}
	switch cmd {
	case "encrypt":
		if opts.column == "" {
			return "", nil, fmt.Errorf("%w: -column is required", errUsage)
		}
	case "decrypt":
		if opts.ciphertext == "" || opts.nonce == "" {
			return "", nil, fmt.Errorf("%w: -ciphertext and -nonce are required", errUsage)
		}
	}

	return cmd, opts, nil
}

func run(args []string, stdout io.Writer, clock clockwork.Clock) error {
	cmd, opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	log := logging.WithRun(uuid.NewString()).With("command", cmd, "input", opts.input)

	mem := memory.DefaultAllocator
	in, err := tableio.ReadFile(opts.input, mem)
	if err != nil {
		return err
	}
	defer in.Release()

	codec := encryptedframe.New(
		encryptedframe.WithWorkers(cfg.Workers),
		encryptedframe.WithAllocator(mem),
		encryptedframe.WithLogger(log),
	)

	start := clock.Now()
	var out arrow.Record
	var kinds []encryptedframe.ErrorKind
	switch cmd {
	case "encrypt":
		out, err = codec.EncryptColumn(in, opts.column, cfg.Passphrase)
	case "decrypt":
		out, kinds, err = codec.DecryptColumnsDetailed(in, opts.ciphertext, opts.nonce, cfg.Passphrase)
	}
	if err != nil {
		logging.WithError(err).Error("operation failed", "command", cmd)
		return err
	}
	defer out.Release()

	log.Info("operation complete",
		"rows", out.NumRows(),
		"failed_rows", countFailures(kinds),
		"elapsed", clock.Since(start))

	if opts.keep {
		merged, err := tableio.Merge(in, out)
		if err != nil {
			return err
		}
		defer merged.Release()
		out = merged
	}

	if opts.out == "" {
		return tableio.RenderTable(stdout, out, opts.limit)
	}
	if err := tableio.WriteFile(opts.out, out); err != nil {
		return err
	}
	log.Info("output written", "path", opts.out)
	return nil
}

func countFailures(kinds []encryptedframe.ErrorKind) int {
	n := 0
	for _, k := range kinds {
		if k != encryptedframe.KindNone {
			n++
		}
	}
	return n
}
