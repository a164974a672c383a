package record

import "github.com/SciQLop/cdfgo/format"

// CDR flag bits.
const (
	CDRFlagRowMajority = 1 << 0 // records are row-major
	CDRFlagSingleFile  = 1 << 1 // single-file CDF
	CDRFlagChecksum    = 1 << 2 // MD5 checksum appended to the file
)

// CDR is the CDF descriptor record, located at offset 8 of every
// uncompressed CDF v3 file.
type CDR struct {
	GDROffset int64
	Version   int32
	Release   int32
	Encoding  format.EncodingType
	Flags     int32
	Increment int32
	Copyright string
}

// cdrFixedSize is the record size of a CDR: prefix, GDR offset, five int32
// fields and the 256-byte copyright field.
const cdrFixedSize = PrefixSize + 8 + 5*4 + NameFieldSize

// RowMajor reports whether the majority flag declares row-major records.
func (r *CDR) RowMajor() bool {
	return r.Flags&CDRFlagRowMajority != 0
}

// Checksum reports whether the file carries a trailing MD5 digest.
func (r *CDR) Checksum() bool {
	return r.Flags&CDRFlagChecksum != 0
}

// Size returns the on-disk record size including the prefix.
func (r *CDR) Size() int64 {
	return cdrFixedSize
}

// AppendTo serializes the record and returns the extended buffer.
func (r *CDR) AppendTo(buf []byte) []byte {
	buf = appendPrefix(buf, r.Size(), format.RecordCDR)
	buf = appendInt64(buf, r.GDROffset)
	buf = appendInt32(buf, r.Version)
	buf = appendInt32(buf, r.Release)
	buf = appendInt32(buf, int32(r.Encoding))
	buf = appendInt32(buf, r.Flags)
	buf = appendInt32(buf, r.Increment)
	buf = appendName(buf, r.Copyright)

	return buf
}

// ParseCDR parses a CDR from a full record buffer.
func ParseCDR(data []byte) (CDR, error) {
	if err := checkPrefix(data, format.RecordCDR); err != nil {
		return CDR{}, err
	}

	fr := newFieldReader(data)
	r := CDR{
		GDROffset: fr.int64(),
		Version:   fr.int32(),
		Release:   fr.int32(),
		Encoding:  format.EncodingType(fr.int32()),
		Flags:     fr.int32(),
		Increment: fr.int32(),
		Copyright: fr.name(),
	}

	return r, fr.err
}
