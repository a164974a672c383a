package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/SciQLop/cdfgo/errs"
)

const defaultGzipLevel = 6

// GzipCodec implements the GZIP frames used by CVVR and CCR records with
// compression code 5. The CPR parameter selects the deflate level (1-9).
type GzipCodec struct {
	level int
}

var _ Codec = (*GzipCodec)(nil)

// gzipWriterPools pools one writer set per compression level. The
// klauspost/compress writers hold large internal state that is worth
// reusing across records.
var gzipWriterPools [10]sync.Pool

// gzipReaderPool pools gzip readers; Reset makes them reusable across
// payloads.
var gzipReaderPool = sync.Pool{
	New: func() any {
		return new(gzip.Reader)
	},
}

// NewGzipCodec creates a GZIP codec with the given deflate level.
//
// Parameters:
//   - level: compression level 1 (fastest) to 9 (best)
//
// Returns:
//   - Codec: the created codec
//   - error: errs.ErrInvalidCompressionLevel if level is out of range
func NewGzipCodec(level int) (GzipCodec, error) {
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		return GzipCodec{}, fmt.Errorf("%w: gzip level %d", errs.ErrInvalidCompressionLevel, level)
	}

	return GzipCodec{level: level}, nil
}

func mustGzipCodec(level int) GzipCodec {
	codec, err := NewGzipCodec(level)
	if err != nil {
		panic(err)
	}

	return codec
}

// Level returns the configured deflate level.
func (c GzipCodec) Level() int {
	return c.level
}

// Compress deflates data into a GZIP frame.
func (c GzipCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 64)

	pool := &gzipWriterPools[c.level]

	w, _ := pool.Get().(*gzip.Writer)
	if w == nil {
		var err error
		w, err = gzip.NewWriterLevel(&buf, c.level)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrCompression, err)
		}
	} else {
		w.Reset(&buf)
	}
	defer pool.Put(w)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%w: gzip write failed: %v", errs.ErrCompression, err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: gzip close failed: %v", errs.ErrCompression, err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates a GZIP frame.
func (c GzipCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, _ := gzipReaderPool.Get().(*gzip.Reader)
	defer gzipReaderPool.Put(r)

	if err := r.Reset(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: invalid gzip frame: %v", errs.ErrCompression, err)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip inflate failed: %v", errs.ErrCompression, err)
	}

	if err := r.Close(); err != nil {
		return nil, fmt.Errorf("%w: gzip stream corrupt: %v", errs.ErrCompression, err)
	}

	return out, nil
}
