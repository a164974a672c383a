// Package pool provides reusable byte buffers for the record encoder.
// Encoding a file builds several transient images (record scratch space,
// the uncompressed inner image of a compressed file); pooling them keeps
// repeated saves allocation-free after warmup.
package pool

import (
	"io"
	"sync"
)

const (
	// EncodeBufferDefaultSize is the initial capacity of pooled buffers.
	EncodeBufferDefaultSize = 1024 * 16 // 16KiB

	// EncodeBufferMaxThreshold caps the capacity a buffer may keep when
	// returned, so one huge variable does not pin memory forever.
	EncodeBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB
)

// ByteBuffer wraps a byte slice with append-style helpers.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally and drops buffers that grew past the
// configured threshold instead of retaining them.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the
// specified default capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// Put returns a ByteBuffer to the pool unless it outgrew the threshold.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bbp.pool.Put(bb)
}

// defaultPool serves the encoder's scratch buffers.
var defaultPool = NewByteBufferPool(EncodeBufferDefaultSize, EncodeBufferMaxThreshold)

// GetBuffer retrieves an empty buffer from the shared encoder pool.
func GetBuffer() *ByteBuffer {
	return defaultPool.Get()
}

// PutBuffer returns a buffer to the shared encoder pool.
func PutBuffer(bb *ByteBuffer) {
	defaultPool.Put(bb)
}
