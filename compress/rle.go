package compress

import (
	"fmt"

	"github.com/SciQLop/cdfgo/errs"
)

// RLECodec implements the CDF RLE0 scheme: run-length encoding of zero
// bytes only. A zero byte is followed by a count byte n and expands to n+1
// zeros; every other byte is a literal.
//
// Scientific pad-heavy records compress well under this scheme. Input
// without zero bytes keeps its size, since literals are stored as-is; each
// isolated zero byte takes two bytes, so input with many short zero runs
// grows.
type RLECodec struct{}

var _ Codec = (*RLECodec)(nil)

// NewRLECodec creates an RLE0 codec.
func NewRLECodec() RLECodec {
	return RLECodec{}
}

// Compress encodes runs of zero bytes as (0x00, n) pairs where n+1 is the
// run length. Runs longer than 256 are split.
func (c RLECodec) Compress(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))

	for i := 0; i < len(data); {
		b := data[i]
		if b != 0 {
			out = append(out, b)
			i++

			continue
		}

		run := 1
		for i+run < len(data) && data[i+run] == 0 && run < 256 {
			run++
		}

		out = append(out, 0x00, byte(run-1))
		i += run
	}

	return out, nil
}

// Decompress expands (0x00, n) pairs back into n+1 zero bytes.
func (c RLECodec) Decompress(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)

	for i := 0; i < len(data); i++ {
		b := data[i]
		if b != 0 {
			out = append(out, b)
			continue
		}

		if i+1 >= len(data) {
			return nil, fmt.Errorf("%w: RLE stream truncated at zero marker", errs.ErrCompression)
		}

		i++
		n := int(data[i]) + 1
		for range n {
			out = append(out, 0)
		}
	}

	return out, nil
}
