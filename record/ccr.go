package record

import "github.com/SciQLop/cdfgo/format"

// CCR is the compressed CDF record: when a file is compressed as a whole,
// a CCR at offset 8 replaces the CDR and carries the deflated image of
// everything past the magic numbers.
type CCR struct {
	CPROffset int64
	USize     int64 // size of the uncompressed image
	RfuA      int32
	Data      []byte
}

// Size returns the on-disk record size including the prefix.
func (r *CCR) Size() int64 {
	return int64(PrefixSize + 2*8 + 4 + len(r.Data))
}

// AppendTo serializes the record and returns the extended buffer.
func (r *CCR) AppendTo(buf []byte) []byte {
	buf = appendPrefix(buf, r.Size(), format.RecordCCR)
	buf = appendInt64(buf, r.CPROffset)
	buf = appendInt64(buf, r.USize)
	buf = appendInt32(buf, r.RfuA)
	buf = append(buf, r.Data...)

	return buf
}

// ParseCCR parses a CCR from a full record buffer.
func ParseCCR(data []byte) (CCR, error) {
	if err := checkPrefix(data, format.RecordCCR); err != nil {
		return CCR{}, err
	}

	fr := newFieldReader(data)
	r := CCR{
		CPROffset: fr.int64(),
		USize:     fr.int64(),
		RfuA:      fr.int32(),
	}
	r.Data = fr.rest()

	return r, fr.err
}

// CPR is a compression parameters record: the algorithm code and its
// parameters (the GZIP level, for instance).
type CPR struct {
	CType  format.CompressionType
	RfuA   int32
	Params []int32
}

// Size returns the on-disk record size including the prefix.
func (r *CPR) Size() int64 {
	return int64(PrefixSize + 3*4 + 4*len(r.Params))
}

// AppendTo serializes the record and returns the extended buffer.
func (r *CPR) AppendTo(buf []byte) []byte {
	buf = appendPrefix(buf, r.Size(), format.RecordCPR)
	buf = appendInt32(buf, int32(r.CType))
	buf = appendInt32(buf, r.RfuA)
	buf = appendInt32(buf, int32(len(r.Params)))

	for _, p := range r.Params {
		buf = appendInt32(buf, p)
	}

	return buf
}

// ParseCPR parses a CPR from a full record buffer.
func ParseCPR(data []byte) (CPR, error) {
	if err := checkPrefix(data, format.RecordCPR); err != nil {
		return CPR{}, err
	}

	fr := newFieldReader(data)
	r := CPR{
		CType: format.CompressionType(fr.int32()),
		RfuA:  fr.int32(),
	}

	pCount := fr.int32()
	if fr.err == nil && pCount >= 0 {
		r.Params = make([]int32, pCount)
		for i := range r.Params {
			r.Params[i] = fr.int32()
		}
	}

	return r, fr.err
}
