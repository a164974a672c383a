package compress

// NoOpCodec passes data through unchanged. It backs the CompressionNone
// code so the record writers can treat every variable uniformly.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a codec that bypasses compression.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress returns a newly allocated copy of the input data.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

// Decompress returns a newly allocated copy of the input data.
func (c NoOpCodec) Decompress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}
