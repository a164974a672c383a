package record

import "github.com/SciQLop/cdfgo/format"

// AEDR is an attribute entry descriptor record, one per entry. The same
// layout serves both AgrEDR and AzEDR chains; only the record type code
// differs.
type AEDR struct {
	RType      format.RecordType // RecordAgrEDR or RecordAzEDR
	AEDRNext   int64
	AttrNum    int32
	DataType   format.DataType
	Num        int32 // entry number
	NumElems   int32
	NumStrings int32
	Values     []byte
}

// Size returns the on-disk record size including the prefix.
func (r *AEDR) Size() int64 {
	return int64(PrefixSize + 8 + 5*4 + len(r.Values))
}

// AppendTo serializes the record and returns the extended buffer.
func (r *AEDR) AppendTo(buf []byte) []byte {
	buf = appendPrefix(buf, r.Size(), r.RType)
	buf = appendInt64(buf, r.AEDRNext)
	buf = appendInt32(buf, r.AttrNum)
	buf = appendInt32(buf, int32(r.DataType))
	buf = appendInt32(buf, r.Num)
	buf = appendInt32(buf, r.NumElems)
	buf = appendInt32(buf, r.NumStrings)
	buf = append(buf, r.Values...)

	return buf
}

// ParseAEDR parses an AEDR from a full record buffer. Both entry record
// types are accepted.
func ParseAEDR(data []byte) (AEDR, error) {
	p, err := ParsePrefix(data)
	if err != nil {
		return AEDR{}, err
	}

	want := p.Type
	if want != format.RecordAgrEDR && want != format.RecordAzEDR {
		want = format.RecordAgrEDR
	}

	if err := checkPrefix(data, want); err != nil {
		return AEDR{}, err
	}

	fr := newFieldReader(data)
	r := AEDR{
		RType:      p.Type,
		AEDRNext:   fr.int64(),
		AttrNum:    fr.int32(),
		DataType:   format.DataType(fr.int32()),
		Num:        fr.int32(),
		NumElems:   fr.int32(),
		NumStrings: fr.int32(),
	}
	r.Values = fr.rest()

	return r, fr.err
}
