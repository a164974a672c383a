package compress

import (
	"fmt"

	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
)

// Compressor compresses a complete record payload into a new buffer.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload previously produced by the matching
// Compressor.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// The input must have been compressed with the same algorithm; corrupted
	// or mismatched input returns an error wrapping errs.ErrCompression.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory function that creates a Codec for the given CDF
// compression code.
//
// Parameters:
//   - compressionType: algorithm code as stored in a CPR record
//   - param: algorithm parameter (GZIP level 1-9; ignored by the others)
//
// Returns:
//   - Codec: codec instance for the specified algorithm
//   - error: invalid compression code or parameter
func CreateCodec(compressionType format.CompressionType, param int) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCodec(), nil
	case format.CompressionRLE:
		return NewRLECodec(), nil
	case format.CompressionHuffman:
		return NewHuffmanCodec(), nil
	case format.CompressionAHuffman:
		return NewAdaptiveHuffmanCodec(), nil
	case format.CompressionGzip:
		return NewGzipCodec(param)
	default:
		return nil, fmt.Errorf("%w: unknown compression code %d", errs.ErrCompression, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone:     NewNoOpCodec(),
	format.CompressionRLE:      NewRLECodec(),
	format.CompressionHuffman:  NewHuffmanCodec(),
	format.CompressionAHuffman: NewAdaptiveHuffmanCodec(),
	format.CompressionGzip:     mustGzipCodec(defaultGzipLevel),
}

// GetCodec retrieves a built-in Codec for the specified compression code.
// The GZIP codec uses the default level; use CreateCodec to pick another.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: unsupported compression code %d", errs.ErrCompression, compressionType)
}
