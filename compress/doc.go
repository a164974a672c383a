// Package compress provides the compression codecs used by CDF variable
// records (CVVR) and whole-file compression (CCR).
//
// The CDF format carries a closed registry of algorithms, identified by the
// code stored in CPR and CVVR records:
//   - None (0): passthrough
//   - RLE (1): run-length encoding of zero bytes
//   - Huffman (2): canonical Huffman coding with an explicit code-length table
//   - AdaptiveHuffman (3): FGK adaptive Huffman coding
//   - Gzip (5): GZIP (DEFLATE) frames, level 1-9
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Codecs are obtained from the registry by compression code:
//
//	codec, err := compress.GetCodec(format.CompressionGzip)
//	inflated, err := codec.Decompress(payload)
//
// All codecs are pure: they never modify their input and always allocate
// their output. Failures wrap errs.ErrCompression.
//
// # Thread Safety
//
// All codecs in this package are safe for concurrent use. The gzip codec
// pools its flate writers per level; the Huffman codecs are stateless
// between calls.
package compress
