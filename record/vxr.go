package record

import "github.com/SciQLop/cdfgo/format"

// VXR is a variable index record: a table of (first record, last record,
// offset) triples, each pointing at the VVR or CVVR covering that record
// range.
type VXR struct {
	VXRNext      int64
	NEntries     int32
	NUsedEntries int32
	First        []int32
	Last         []int32
	Offset       []int64
}

// Size returns the on-disk record size including the prefix.
func (r *VXR) Size() int64 {
	return int64(PrefixSize + 8 + 2*4 + len(r.First)*4 + len(r.Last)*4 + len(r.Offset)*8)
}

// AppendTo serializes the record and returns the extended buffer.
func (r *VXR) AppendTo(buf []byte) []byte {
	buf = appendPrefix(buf, r.Size(), format.RecordVXR)
	buf = appendInt64(buf, r.VXRNext)
	buf = appendInt32(buf, r.NEntries)
	buf = appendInt32(buf, r.NUsedEntries)

	for _, v := range r.First {
		buf = appendInt32(buf, v)
	}
	for _, v := range r.Last {
		buf = appendInt32(buf, v)
	}
	for _, v := range r.Offset {
		buf = appendInt64(buf, v)
	}

	return buf
}

// ParseVXR parses a VXR from a full record buffer.
func ParseVXR(data []byte) (VXR, error) {
	if err := checkPrefix(data, format.RecordVXR); err != nil {
		return VXR{}, err
	}

	fr := newFieldReader(data)
	r := VXR{
		VXRNext:      fr.int64(),
		NEntries:     fr.int32(),
		NUsedEntries: fr.int32(),
	}

	if fr.err == nil && r.NEntries >= 0 {
		r.First = make([]int32, r.NEntries)
		for i := range r.First {
			r.First[i] = fr.int32()
		}

		r.Last = make([]int32, r.NEntries)
		for i := range r.Last {
			r.Last[i] = fr.int32()
		}

		r.Offset = make([]int64, r.NEntries)
		for i := range r.Offset {
			r.Offset[i] = fr.int64()
		}
	}

	return r, fr.err
}
