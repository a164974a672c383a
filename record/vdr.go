package record

import "github.com/SciQLop/cdfgo/format"

// VDR flag bits.
const (
	VDRFlagRecordVariance = 1 << 0 // records hold distinct data
	VDRFlagPadSpecified   = 1 << 1 // explicit pad value present
	VDRFlagCompression    = 1 << 2 // data records are compressed
)

// VDR is a variable descriptor record. zVDRs carry their own dimension
// sizes; rVDRs share the dimension sizes declared in the GDR, so their
// variance bitmap length is the GDR's rNumDims.
type VDR struct {
	RType          format.RecordType // RecordZVDR or RecordRVDR
	VDRNext        int64
	DataType       format.DataType
	MaxRec         int32
	VXRHead        int64
	VXRTail        int64
	Flags          int32
	SRecords       int32
	RfuB           int32
	NumElems       int32
	Num            int32
	CPROffset      int64
	BlockingFactor int32
	Name           string
	ZNumDims       int32
	ZDimSizes      []int32
	DimVarys       []int32
	Pad            []byte
}

// IsZ reports whether the record is a zVDR.
func (r *VDR) IsZ() bool {
	return r.RType == format.RecordZVDR
}

// RecordVariant reports whether each record holds distinct data.
func (r *VDR) RecordVariant() bool {
	return r.Flags&VDRFlagRecordVariance != 0
}

// HasPad reports whether an explicit pad value is stored.
func (r *VDR) HasPad() bool {
	return r.Flags&VDRFlagPadSpecified != 0
}

// Compressed reports whether the variable's data records are compressed.
func (r *VDR) Compressed() bool {
	return r.Flags&VDRFlagCompression != 0
}

// Size returns the on-disk record size including the prefix.
func (r *VDR) Size() int64 {
	size := int64(PrefixSize + 3*8 + 7*4 + 8 + 4 + NameFieldSize)
	if r.IsZ() {
		size += 4 + int64(4*len(r.ZDimSizes))
	}
	size += int64(4*len(r.DimVarys) + len(r.Pad))

	return size
}

// AppendTo serializes the record and returns the extended buffer.
func (r *VDR) AppendTo(buf []byte) []byte {
	buf = appendPrefix(buf, r.Size(), r.RType)
	buf = appendInt64(buf, r.VDRNext)
	buf = appendInt32(buf, int32(r.DataType))
	buf = appendInt32(buf, r.MaxRec)
	buf = appendInt64(buf, r.VXRHead)
	buf = appendInt64(buf, r.VXRTail)
	buf = appendInt32(buf, r.Flags)
	buf = appendInt32(buf, r.SRecords)
	buf = appendInt32(buf, r.RfuB)
	buf = appendInt32(buf, r.NumElems)
	buf = appendInt32(buf, r.Num)
	buf = appendInt64(buf, r.CPROffset)
	buf = appendInt32(buf, r.BlockingFactor)
	buf = appendName(buf, r.Name)

	if r.IsZ() {
		buf = appendInt32(buf, r.ZNumDims)
		for _, d := range r.ZDimSizes {
			buf = appendInt32(buf, d)
		}
	}

	for _, v := range r.DimVarys {
		buf = appendInt32(buf, v)
	}

	buf = append(buf, r.Pad...)

	return buf
}

// ParseVDR parses a VDR from a full record buffer. rNumDims supplies the
// GDR dimension count used by rVDRs; padSize is the byte length of the pad
// value when the pad flag is set (element size times numElems).
func ParseVDR(data []byte, rNumDims int32, padSize func(v *VDR) int) (VDR, error) {
	p, err := ParsePrefix(data)
	if err != nil {
		return VDR{}, err
	}

	want := p.Type
	if want != format.RecordZVDR && want != format.RecordRVDR {
		want = format.RecordZVDR
	}

	if err := checkPrefix(data, want); err != nil {
		return VDR{}, err
	}

	fr := newFieldReader(data)
	r := VDR{
		RType:          p.Type,
		VDRNext:        fr.int64(),
		DataType:       format.DataType(fr.int32()),
		MaxRec:         fr.int32(),
		VXRHead:        fr.int64(),
		VXRTail:        fr.int64(),
		Flags:          fr.int32(),
		SRecords:       fr.int32(),
		RfuB:           fr.int32(),
		NumElems:       fr.int32(),
		Num:            fr.int32(),
		CPROffset:      fr.int64(),
		BlockingFactor: fr.int32(),
		Name:           fr.name(),
	}

	numDims := rNumDims
	if r.IsZ() {
		r.ZNumDims = fr.int32()
		numDims = r.ZNumDims

		if fr.err == nil && r.ZNumDims >= 0 {
			r.ZDimSizes = make([]int32, r.ZNumDims)
			for i := range r.ZDimSizes {
				r.ZDimSizes[i] = fr.int32()
			}
		}
	}

	if fr.err == nil && numDims >= 0 {
		r.DimVarys = make([]int32, numDims)
		for i := range r.DimVarys {
			r.DimVarys[i] = fr.int32()
		}
	}

	if fr.err == nil && r.HasPad() {
		r.Pad = fr.bytes(padSize(&r))
	}

	return r, fr.err
}
