package file

import (
	"fmt"

	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
	"github.com/SciQLop/cdfgo/internal/options"
)

// DefaultMaxDecodedBytes caps the materialized size of a single variable.
// A VDR whose computed slab exceeds the cap is rejected before allocation.
const DefaultMaxDecodedBytes = int64(1) << 32 // 4GiB

// LoadOptions configures decoding.
type LoadOptions struct {
	// Lazy defers variable slab materialization until first access.
	Lazy bool

	// ISO8859_1 decodes CHAR attribute payloads as Latin-1 instead of
	// UTF-8.
	ISO8859_1 bool

	// MaxDecodedBytes rejects variables whose materialized slab would
	// exceed this many bytes.
	MaxDecodedBytes int64
}

// LoadOption configures a load operation.
type LoadOption = options.Option[*LoadOptions]

// NewLoadOptions applies opts over the defaults.
func NewLoadOptions(opts ...LoadOption) (*LoadOptions, error) {
	cfg := &LoadOptions{
		MaxDecodedBytes: DefaultMaxDecodedBytes,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithLazyLoading defers variable data materialization until the first
// access to a variable's data. The decoded byte image stays referenced
// until every variable has been materialized.
func WithLazyLoading(lazy bool) LoadOption {
	return options.NoError(func(cfg *LoadOptions) {
		cfg.Lazy = lazy
	})
}

// WithISO8859_1 treats CHAR attribute payloads as Latin-1 text.
func WithISO8859_1(enabled bool) LoadOption {
	return options.NoError(func(cfg *LoadOptions) {
		cfg.ISO8859_1 = enabled
	})
}

// WithMaxDecodedBytes bounds the materialized size of a single variable.
func WithMaxDecodedBytes(limit int64) LoadOption {
	return options.New(func(cfg *LoadOptions) error {
		if limit <= 0 {
			return fmt.Errorf("%w: max decoded bytes %d", errs.ErrResourceExceeded, limit)
		}

		cfg.MaxDecodedBytes = limit

		return nil
	})
}

// SaveOptions configures encoding.
type SaveOptions struct {
	// FileCompression wraps the whole file in a compressed CCR when set
	// to something other than format.CompressionNone.
	FileCompression format.CompressionType

	// FileCompressionParam is the algorithm parameter (the GZIP level).
	FileCompressionParam int

	// overrideFileCompression records whether the option was given, so a
	// File's own compression setting is preserved otherwise.
	overrideFileCompression bool
}

// SaveOption configures a save operation.
type SaveOption = options.Option[*SaveOptions]

// NewSaveOptions applies opts over the defaults.
func NewSaveOptions(opts ...SaveOption) (*SaveOptions, error) {
	cfg := &SaveOptions{}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithFileCompression selects whole-file compression for this save,
// overriding the File's own setting. Gzip levels run 1-9.
func WithFileCompression(c format.CompressionType, param int) SaveOption {
	return options.New(func(cfg *SaveOptions) error {
		if c == format.CompressionGzip && (param < 1 || param > 9) {
			return fmt.Errorf("%w: gzip level %d", errs.ErrInvalidCompressionLevel, param)
		}

		cfg.FileCompression = c
		cfg.FileCompressionParam = param
		cfg.overrideFileCompression = true

		return nil
	})
}
