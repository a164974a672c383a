package record

import "github.com/SciQLop/cdfgo/format"

// ADR is an attribute descriptor record. Attributes form a linked list
// headed in the GDR; each ADR heads two entry chains, one for g/rEntries
// and one for zEntries.
type ADR struct {
	ADRNext    int64
	AgrEDRHead int64
	Scope      format.Scope
	Num        int32
	NgrEntries int32
	MaxGrEntry int32
	AzEDRHead  int64
	NzEntries  int32
	MaxZEntry  int32
	Name       string
}

// Size returns the on-disk record size including the prefix.
func (r *ADR) Size() int64 {
	return PrefixSize + 3*8 + 6*4 + NameFieldSize
}

// AppendTo serializes the record and returns the extended buffer.
func (r *ADR) AppendTo(buf []byte) []byte {
	buf = appendPrefix(buf, r.Size(), format.RecordADR)
	buf = appendInt64(buf, r.ADRNext)
	buf = appendInt64(buf, r.AgrEDRHead)
	buf = appendInt32(buf, int32(r.Scope))
	buf = appendInt32(buf, r.Num)
	buf = appendInt32(buf, r.NgrEntries)
	buf = appendInt32(buf, r.MaxGrEntry)
	buf = appendInt64(buf, r.AzEDRHead)
	buf = appendInt32(buf, r.NzEntries)
	buf = appendInt32(buf, r.MaxZEntry)
	buf = appendName(buf, r.Name)

	return buf
}

// ParseADR parses an ADR from a full record buffer.
func ParseADR(data []byte) (ADR, error) {
	if err := checkPrefix(data, format.RecordADR); err != nil {
		return ADR{}, err
	}

	fr := newFieldReader(data)
	r := ADR{
		ADRNext:    fr.int64(),
		AgrEDRHead: fr.int64(),
		Scope:      format.Scope(fr.int32()),
		Num:        fr.int32(),
		NgrEntries: fr.int32(),
		MaxGrEntry: fr.int32(),
		AzEDRHead:  fr.int64(),
		NzEntries:  fr.int32(),
		MaxZEntry:  fr.int32(),
		Name:       fr.name(),
	}

	return r, fr.err
}
