// Package record provides typed views of the CDF v3 internal records: CDR,
// GDR, ADR, AEDR, VDR (r and z), VXR, VVR, CVVR, CCR and CPR.
//
// Every record starts with a 12-byte prefix: the record size as a
// big-endian uint64 followed by the record type as a big-endian int32.
// All remaining integer fields are big-endian. Offsets are absolute 64-bit
// file offsets; the value NoLink marks the end of a linked list.
//
// Each record kind pairs a Parse function, which validates the prefix and
// the declared size against the payload layout, with an AppendTo method
// that emits the exact same layout. Parse failures wrap errs.ErrBadRecord.
package record

import (
	"fmt"

	"github.com/SciQLop/cdfgo/endian"
	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
)

const (
	// PrefixSize is the byte length of the (size, type) record prefix.
	PrefixSize = 12

	// NameFieldSize is the fixed byte length of name fields in ADR and VDR
	// records and of the CDR copyright field.
	NameFieldSize = 256

	// NoLink terminates every linked list of records.
	NoLink int64 = -1
)

// engine is the fixed byte order of CDF record structure.
var engine = endian.GetBigEndianEngine()

// Prefix is the 12-byte header shared by every record.
type Prefix struct {
	Size int64
	Type format.RecordType
}

// ParsePrefix reads the record prefix from the start of data.
func ParsePrefix(data []byte) (Prefix, error) {
	if len(data) < PrefixSize {
		return Prefix{}, fmt.Errorf("%w: %d bytes left for record prefix", errs.ErrBadRecord, len(data))
	}

	return Prefix{
		Size: int64(engine.Uint64(data[0:8])),
		Type: format.RecordType(int32(engine.Uint32(data[8:12]))),
	}, nil
}

// checkPrefix validates a full record buffer against the expected kind.
func checkPrefix(data []byte, want format.RecordType) error {
	p, err := ParsePrefix(data)
	if err != nil {
		return err
	}

	if p.Type != want {
		return fmt.Errorf("%w: record type %d, expected %d", errs.ErrBadRecord, p.Type, want)
	}

	if p.Size != int64(len(data)) {
		return fmt.Errorf("%w: declared size %d, buffer size %d", errs.ErrBadRecord, p.Size, len(data))
	}

	return nil
}

// fieldReader cursors over a record payload, remembering the first error.
// Every read past the end poisons the reader instead of panicking, so the
// per-record Parse functions can read all fields and check err once.
type fieldReader struct {
	data []byte
	off  int
	err  error
}

func newFieldReader(data []byte) *fieldReader {
	return &fieldReader{data: data, off: PrefixSize}
}

func (r *fieldReader) fail(n int) bool {
	if r.err != nil {
		return true
	}

	if r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: field at offset %d overruns record of %d bytes",
			errs.ErrBadRecord, r.off, len(r.data))

		return true
	}

	return false
}

func (r *fieldReader) int32() int32 {
	if r.fail(4) {
		return 0
	}

	v := int32(engine.Uint32(r.data[r.off : r.off+4]))
	r.off += 4

	return v
}

func (r *fieldReader) int64() int64 {
	if r.fail(8) {
		return 0
	}

	v := int64(engine.Uint64(r.data[r.off : r.off+8]))
	r.off += 8

	return v
}

func (r *fieldReader) bytes(n int) []byte {
	if n < 0 || r.fail(n) {
		if r.err == nil {
			r.err = fmt.Errorf("%w: negative field length", errs.ErrBadRecord)
		}

		return nil
	}

	v := make([]byte, n)
	copy(v, r.data[r.off:r.off+n])
	r.off += n

	return v
}

// rest returns all remaining payload bytes.
func (r *fieldReader) rest() []byte {
	if r.err != nil {
		return nil
	}

	v := make([]byte, len(r.data)-r.off)
	copy(v, r.data[r.off:])
	r.off = len(r.data)

	return v
}

// name reads a fixed 256-byte field and trims trailing NUL padding.
func (r *fieldReader) name() string {
	raw := r.bytes(NameFieldSize)
	if raw == nil {
		return ""
	}

	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}

	return string(raw[:end])
}

// appendPrefix emits the 12-byte record prefix.
func appendPrefix(buf []byte, size int64, typ format.RecordType) []byte {
	buf = engine.AppendUint64(buf, uint64(size))
	buf = engine.AppendUint32(buf, uint32(typ))

	return buf
}

func appendInt32(buf []byte, v int32) []byte {
	return engine.AppendUint32(buf, uint32(v))
}

func appendInt64(buf []byte, v int64) []byte {
	return engine.AppendUint64(buf, uint64(v))
}

// appendName emits a string into a fixed 256-byte NUL-padded field.
func appendName(buf []byte, s string) []byte {
	var field [NameFieldSize]byte
	copy(field[:], s)

	return append(buf, field[:]...)
}

// ValidName reports whether s fits an on-disk name field.
func ValidName(s string) bool {
	return len(s) <= NameFieldSize
}
