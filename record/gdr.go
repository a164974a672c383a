package record

import "github.com/SciQLop/cdfgo/format"

// GDR file format codes.
const (
	GDRFormatSingle = 1
	GDRFormatMulti  = 2
)

// GDR is the global descriptor record: heads of the variable and attribute
// lists, global counters, and the shared r-variable dimension sizes.
type GDR struct {
	RVDRHead  int64
	ZVDRHead  int64
	ADRHead   int64
	EOF       int64
	NrVars    int32
	NumAttrs  int32
	RMaxRec   int32
	RNumDims  int32
	NzVars    int32
	Format    int32
	RDimSizes []int32
}

// Size returns the on-disk record size including the prefix.
func (r *GDR) Size() int64 {
	return int64(PrefixSize + 4*8 + 6*4 + 4*len(r.RDimSizes))
}

// AppendTo serializes the record and returns the extended buffer.
func (r *GDR) AppendTo(buf []byte) []byte {
	buf = appendPrefix(buf, r.Size(), format.RecordGDR)
	buf = appendInt64(buf, r.RVDRHead)
	buf = appendInt64(buf, r.ZVDRHead)
	buf = appendInt64(buf, r.ADRHead)
	buf = appendInt64(buf, r.EOF)
	buf = appendInt32(buf, r.NrVars)
	buf = appendInt32(buf, r.NumAttrs)
	buf = appendInt32(buf, r.RMaxRec)
	buf = appendInt32(buf, r.RNumDims)
	buf = appendInt32(buf, r.NzVars)
	buf = appendInt32(buf, r.Format)

	for _, d := range r.RDimSizes {
		buf = appendInt32(buf, d)
	}

	return buf
}

// ParseGDR parses a GDR from a full record buffer.
func ParseGDR(data []byte) (GDR, error) {
	if err := checkPrefix(data, format.RecordGDR); err != nil {
		return GDR{}, err
	}

	fr := newFieldReader(data)
	r := GDR{
		RVDRHead: fr.int64(),
		ZVDRHead: fr.int64(),
		ADRHead:  fr.int64(),
		EOF:      fr.int64(),
		NrVars:   fr.int32(),
		NumAttrs: fr.int32(),
		RMaxRec:  fr.int32(),
		RNumDims: fr.int32(),
		NzVars:   fr.int32(),
		Format:   fr.int32(),
	}

	if fr.err == nil && r.RNumDims >= 0 {
		r.RDimSizes = make([]int32, r.RNumDims)
		for i := range r.RDimSizes {
			r.RDimSizes[i] = fr.int32()
		}
	}

	return r, fr.err
}
