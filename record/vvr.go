package record

import "github.com/SciQLop/cdfgo/format"

// VVR is a variable values record: the raw bytes of one or more
// consecutive records of a variable.
type VVR struct {
	Data []byte
}

// Size returns the on-disk record size including the prefix.
func (r *VVR) Size() int64 {
	return int64(PrefixSize + len(r.Data))
}

// AppendTo serializes the record and returns the extended buffer.
func (r *VVR) AppendTo(buf []byte) []byte {
	buf = appendPrefix(buf, r.Size(), format.RecordVVR)
	buf = append(buf, r.Data...)

	return buf
}

// ParseVVR parses a VVR from a full record buffer.
func ParseVVR(data []byte) (VVR, error) {
	if err := checkPrefix(data, format.RecordVVR); err != nil {
		return VVR{}, err
	}

	fr := newFieldReader(data)

	return VVR{Data: fr.rest()}, fr.err
}

// CVVR is a compressed variable values record: the compression code, the
// compressed payload size and the payload itself.
type CVVR struct {
	CType format.CompressionType
	CSize int64
	Data  []byte
}

// Size returns the on-disk record size including the prefix.
func (r *CVVR) Size() int64 {
	return int64(PrefixSize + 4 + 8 + len(r.Data))
}

// AppendTo serializes the record and returns the extended buffer.
func (r *CVVR) AppendTo(buf []byte) []byte {
	buf = appendPrefix(buf, r.Size(), format.RecordCVVR)
	buf = appendInt32(buf, int32(r.CType))
	buf = appendInt64(buf, r.CSize)
	buf = append(buf, r.Data...)

	return buf
}

// ParseCVVR parses a CVVR from a full record buffer.
func ParseCVVR(data []byte) (CVVR, error) {
	if err := checkPrefix(data, format.RecordCVVR); err != nil {
		return CVVR{}, err
	}

	fr := newFieldReader(data)
	r := CVVR{
		CType: format.CompressionType(fr.int32()),
		CSize: fr.int64(),
	}
	r.Data = fr.rest()

	return r, fr.err
}
