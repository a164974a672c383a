package file

import (
	"bytes"
	"crypto/md5"
	"fmt"

	"github.com/SciQLop/cdfgo/compress"
	"github.com/SciQLop/cdfgo/endian"
	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
	"github.com/SciQLop/cdfgo/record"
)

// File framing constants.
const (
	magicV3           = uint32(0xCDF30001)
	magicV2           = uint32(0xCDF26002)
	magicUncompressed = uint32(0x0000FFFF)
	magicCompressed   = uint32(0xCCCC0001)

	// firstRecordOffset is where the CDR (or CCR) starts, right after the
	// two magic words.
	firstRecordOffset = 8

	md5DigestSize = md5.Size
)

var structural = endian.GetBigEndianEngine()

// decoder walks the record graph of one uncompressed CDF image.
type decoder struct {
	image         []byte
	opts          *LoadOptions
	payloadLittle bool
	gdr           record.GDR
	file          *File
}

// Decode parses a CDF byte image into a File. On error no File is
// returned; partially decoded state is never observable.
func Decode(data []byte, opts *LoadOptions) (*File, error) {
	if opts == nil {
		var err error
		opts, err = NewLoadOptions()
		if err != nil {
			return nil, err
		}
	}

	f := New()

	image, err := unwrap(data, f)
	if err != nil {
		return nil, err
	}

	d := &decoder{image: image, opts: opts, file: f}

	if err := d.decodeCDR(data); err != nil {
		return nil, err
	}
	if err := d.decodeAttributes(); err != nil {
		return nil, err
	}
	if err := d.decodeVariables(); err != nil {
		return nil, err
	}

	return d.file, nil
}

// unwrap validates the magic words and, for a whole-file compressed CDF,
// inflates the CCR payload back into a plain image. The file-level
// compression spec is recorded on f.
func unwrap(data []byte, f *File) ([]byte, error) {
	if len(data) < firstRecordOffset {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrNotACDF, len(data))
	}

	magic1 := structural.Uint32(data[0:4])
	magic2 := structural.Uint32(data[4:8])

	switch magic1 {
	case magicV3:
	case magicV2, magicUncompressed:
		return nil, fmt.Errorf("%w: magic %#08x", errs.ErrUnsupportedVersion, magic1)
	default:
		return nil, fmt.Errorf("%w: magic %#08x", errs.ErrNotACDF, magic1)
	}

	switch magic2 {
	case magicUncompressed:
		return data, nil
	case magicCompressed:
	default:
		return nil, fmt.Errorf("%w: compression magic %#08x", errs.ErrNotACDF, magic2)
	}

	buf, err := readRecordAt(data, firstRecordOffset)
	if err != nil {
		return nil, err
	}

	ccr, err := record.ParseCCR(buf)
	if err != nil {
		return nil, err
	}

	buf, err = readRecordAt(data, ccr.CPROffset)
	if err != nil {
		return nil, err
	}

	cpr, err := record.ParseCPR(buf)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cpr.CType)
	if err != nil {
		return nil, err
	}

	inner, err := codec.Decompress(ccr.Data)
	if err != nil {
		return nil, err
	}

	if int64(len(inner)) != ccr.USize {
		return nil, fmt.Errorf("%w: CCR inflated to %d bytes, declared %d",
			errs.ErrCorruptedIndex, len(inner), ccr.USize)
	}

	f.compression = cpr.CType
	if len(cpr.Params) > 0 {
		f.compressionParam = int(cpr.Params[0])
	}

	image := make([]byte, 0, firstRecordOffset+len(inner))
	image = structural.AppendUint32(image, magicV3)
	image = structural.AppendUint32(image, magicUncompressed)
	image = append(image, inner...)

	return image, nil
}

// readRecordAt bounds-checks a record's prefix and declared size and
// returns the full record slice.
func readRecordAt(image []byte, offset int64) ([]byte, error) {
	if offset < firstRecordOffset || offset+record.PrefixSize > int64(len(image)) {
		return nil, fmt.Errorf("%w: record offset %d", errs.ErrBadRecord, offset)
	}

	p, err := record.ParsePrefix(image[offset:])
	if err != nil {
		return nil, err
	}

	if p.Size < record.PrefixSize || offset+p.Size > int64(len(image)) {
		return nil, fmt.Errorf("%w: record of %d bytes at offset %d overruns file",
			errs.ErrBadRecord, p.Size, offset)
	}

	return image[offset : offset+p.Size], nil
}

func (d *decoder) readRecord(offset int64) ([]byte, error) {
	return readRecordAt(d.image, offset)
}

func (d *decoder) decodeCDR(raw []byte) error {
	buf, err := d.readRecord(firstRecordOffset)
	if err != nil {
		return err
	}

	cdr, err := record.ParseCDR(buf)
	if err != nil {
		return err
	}

	if cdr.Version != 3 {
		return fmt.Errorf("%w: CDF v%d.%d", errs.ErrUnsupportedVersion, cdr.Version, cdr.Release)
	}

	if !cdr.Encoding.IEEE() {
		return fmt.Errorf("%w: encoding %d", errs.ErrUnsupportedEncoding, cdr.Encoding)
	}

	d.payloadLittle = cdr.Encoding.LittleEndian()

	d.file.version = [3]int32{cdr.Version, cdr.Release, cdr.Increment}
	d.file.copyright = cdr.Copyright
	if cdr.RowMajor() {
		d.file.majority = format.RowMajor
	} else {
		d.file.majority = format.ColumnMajor
	}

	if cdr.Checksum() {
		d.file.checksum = true

		// The digest covers the physical file up to its own 16 bytes.
		if len(raw) < md5DigestSize {
			return fmt.Errorf("%w: checksum flag set on %d-byte file", errs.ErrBadRecord, len(raw))
		}

		digest := md5.Sum(raw[:len(raw)-md5DigestSize])
		if !bytes.Equal(digest[:], raw[len(raw)-md5DigestSize:]) {
			return fmt.Errorf("%w: MD5 checksum mismatch", errs.ErrBadRecord)
		}
	}

	gdrBuf, err := d.readRecord(cdr.GDROffset)
	if err != nil {
		return err
	}

	d.gdr, err = record.ParseGDR(gdrBuf)

	return err
}

func (d *decoder) decodeAttributes() error {
	for offset := d.gdr.ADRHead; offset != record.NoLink; {
		buf, err := d.readRecord(offset)
		if err != nil {
			return err
		}

		adr, err := record.ParseADR(buf)
		if err != nil {
			return err
		}

		attr, err := NewAttribute(adr.Name, adr.Scope)
		if err != nil {
			return err
		}

		if err := d.decodeEntryChain(attr, adr.AgrEDRHead); err != nil {
			return err
		}
		if err := d.decodeEntryChain(attr, adr.AzEDRHead); err != nil {
			return err
		}

		if err := d.file.AddAttribute(attr); err != nil {
			return err
		}

		offset = adr.ADRNext
	}

	return nil
}

func (d *decoder) decodeEntryChain(attr *Attribute, head int64) error {
	for offset := head; offset != record.NoLink; {
		buf, err := d.readRecord(offset)
		if err != nil {
			return err
		}

		aedr, err := record.ParseAEDR(buf)
		if err != nil {
			return err
		}

		cell, err := d.entryCell(aedr)
		if err != nil {
			return err
		}

		if _, exists := attr.Get(aedr.Num); exists {
			return fmt.Errorf("%w: entry %d of attribute %q", errs.ErrCorruptedIndex, aedr.Num, attr.Name())
		}

		attr.Set(aedr.Num, cell)

		offset = aedr.AEDRNext
	}

	return nil
}

// entryCell materializes an AEDR value into a typed cell, normalizing the
// byte order and decoding character payloads as text.
func (d *decoder) entryCell(aedr record.AEDR) (Data, error) {
	if !aedr.DataType.Valid() {
		return Data{}, fmt.Errorf("%w: entry data type %d", errs.ErrBadRecord, aedr.DataType)
	}

	if aedr.DataType.IsString() {
		text := aedr.Values
		if d.opts.ISO8859_1 {
			text = latin1ToUTF8(text)
		}

		return Data{dtype: aedr.DataType, buf: text, numElems: len(text)}, nil
	}

	buf := make([]byte, len(aedr.Values))
	copy(buf, aedr.Values)
	if !d.payloadLittle {
		swapSlab(buf, swapElemSize(aedr.DataType))
	}

	return NewData(aedr.DataType, buf, 1)
}

// latin1ToUTF8 widens ISO 8859-1 bytes into UTF-8.
func latin1ToUTF8(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for _, b := range in {
		out = append(out, string(rune(b))...)
	}

	return out
}

func (d *decoder) decodeVariables() error {
	if err := d.decodeVariableChain(d.gdr.RVDRHead); err != nil {
		return err
	}

	return d.decodeVariableChain(d.gdr.ZVDRHead)
}

func (d *decoder) decodeVariableChain(head int64) error {
	for offset := head; offset != record.NoLink; {
		buf, err := d.readRecord(offset)
		if err != nil {
			return err
		}

		vdr, err := record.ParseVDR(buf, d.gdr.RNumDims, func(v *record.VDR) int {
			return v.DataType.Size() * int(max(v.NumElems, 1))
		})
		if err != nil {
			return err
		}

		v, err := d.decodeVariable(vdr)
		if err != nil {
			return err
		}

		if d.file.variables.Contains(v.name) {
			return fmt.Errorf("%w: variable %q", errs.ErrDuplicateName, v.name)
		}
		d.file.variables.Set(v.name, v)

		offset = vdr.VDRNext
	}

	return nil
}

func (d *decoder) decodeVariable(vdr record.VDR) (*Variable, error) {
	if !vdr.DataType.Valid() {
		return nil, fmt.Errorf("%w: variable data type %d", errs.ErrBadRecord, vdr.DataType)
	}

	shape := vdr.ZDimSizes
	if !vdr.IsZ() {
		shape = d.gdr.RDimSizes
	}
	shape = append([]int32(nil), shape...)

	dimVarys := make([]bool, len(vdr.DimVarys))
	for i, dv := range vdr.DimVarys {
		dimVarys[i] = dv != 0
	}

	numElems := int(max(vdr.NumElems, 1))
	if !vdr.DataType.IsString() {
		numElems = 1
	}

	elemSize := vdr.DataType.Size() * numElems
	perRec := 1
	for _, dim := range shape {
		if dim <= 0 {
			return nil, fmt.Errorf("%w: dimension size %d", errs.ErrBadRecord, dim)
		}
		perRec *= int(dim)
	}

	records := int(vdr.MaxRec) + 1
	if records < 0 {
		records = 0
	}

	total := int64(records) * int64(perRec) * int64(elemSize)
	if total > d.opts.MaxDecodedBytes {
		return nil, fmt.Errorf("%w: variable %q needs %d bytes, limit %d",
			errs.ErrResourceExceeded, vdr.Name, total, d.opts.MaxDecodedBytes)
	}

	v := &Variable{
		name:       vdr.Name,
		num:        vdr.Num,
		dtype:      vdr.DataType,
		numElems:   numElems,
		shape:      shape,
		dimVarys:   dimVarys,
		recVariant: vdr.RecordVariant(),
		maxRec:     vdr.MaxRec,
	}

	if vdr.Compressed() && vdr.CPROffset != record.NoLink {
		buf, err := d.readRecord(vdr.CPROffset)
		if err != nil {
			return nil, err
		}

		cpr, err := record.ParseCPR(buf)
		if err != nil {
			return nil, err
		}

		v.compression = cpr.CType
		if len(cpr.Params) > 0 {
			v.compressionParam = int(cpr.Params[0])
		}
	}

	if vdr.HasPad() {
		pad := make([]byte, len(vdr.Pad))
		copy(pad, vdr.Pad)
		if !d.payloadLittle {
			swapSlab(pad, swapElemSize(vdr.DataType))
		}

		cell, err := NewData(vdr.DataType, pad, numElems)
		if err != nil {
			return nil, err
		}
		v.pad = &cell
	}

	materialize := d.slabLoader(v, vdr, perRec, elemSize, records)

	if d.opts.Lazy {
		v.materialize = materialize
		return v, nil
	}

	data, maxRec, err := materialize()
	if err != nil {
		return nil, err
	}

	v.data = data
	v.maxRec = maxRec

	return v, nil
}

// slabLoader builds the closure that reconstructs a variable's record slab
// from its VXR chain: copy or decompress each indexed block, pad uncovered
// records, then normalize byte order and majority.
func (d *decoder) slabLoader(v *Variable, vdr record.VDR, perRec, elemSize, records int) func() (Data, int32, error) {
	return func() (Data, int32, error) {
		recSize := perRec * elemSize
		slab := make([]byte, records*recSize)
		covered := make([]bool, records)

		for offset := vdr.VXRHead; offset != record.NoLink; {
			buf, err := d.readRecord(offset)
			if err != nil {
				return Data{}, 0, err
			}

			vxr, err := record.ParseVXR(buf)
			if err != nil {
				return Data{}, 0, err
			}

			used := int(vxr.NUsedEntries)
			if used > int(vxr.NEntries) {
				used = int(vxr.NEntries)
			}

			for i := 0; i < used; i++ {
				if err := d.loadBlock(slab, covered, vdr, vxr.First[i], vxr.Last[i], vxr.Offset[i], recSize); err != nil {
					return Data{}, 0, err
				}
			}

			offset = vxr.VXRNext
		}

		d.padUncovered(slab, covered, v, vdr, perRec, elemSize)

		if !vdr.RecordVariant() && records > 1 {
			slab = slab[:recSize]
		}

		if !d.payloadLittle {
			swapSlab(slab, swapElemSize(vdr.DataType))
		}

		if d.file.majority == format.ColumnMajor {
			storedRecords := len(slab) / max(recSize, 1)
			transposeRecords(slab, v.shape, elemSize, storedRecords, true)
		}

		data, err := NewData(vdr.DataType, slab, v.numElems)
		if err != nil {
			return Data{}, 0, err
		}

		return data, vdr.MaxRec, nil
	}
}

// loadBlock copies one VXR entry's records into the slab, inflating CVVR
// payloads first. Overlapping coverage and size mismatches are fatal.
func (d *decoder) loadBlock(slab []byte, covered []bool, vdr record.VDR, first, last int32, offset int64, recSize int) error {
	if first < 0 || last < first || int(last) >= len(covered) {
		return fmt.Errorf("%w: VXR entry covers records [%d, %d] of %d",
			errs.ErrCorruptedIndex, first, last, len(covered))
	}

	for r := first; r <= last; r++ {
		if covered[r] {
			return fmt.Errorf("%w: record %d covered twice", errs.ErrCorruptedIndex, r)
		}
		covered[r] = true
	}

	buf, err := d.readRecord(offset)
	if err != nil {
		return err
	}

	p, err := record.ParsePrefix(buf)
	if err != nil {
		return err
	}

	var raw []byte

	switch p.Type {
	case format.RecordVVR:
		vvr, err := record.ParseVVR(buf)
		if err != nil {
			return err
		}
		raw = vvr.Data

	case format.RecordCVVR:
		cvvr, err := record.ParseCVVR(buf)
		if err != nil {
			return err
		}

		algo := cvvr.CType
		if vdr.Compressed() && vdr.CPROffset != record.NoLink {
			cprBuf, err := d.readRecord(vdr.CPROffset)
			if err != nil {
				return err
			}
			cpr, err := record.ParseCPR(cprBuf)
			if err != nil {
				return err
			}
			algo = cpr.CType
		}

		codec, err := compress.GetCodec(algo)
		if err != nil {
			return err
		}

		raw, err = codec.Decompress(cvvr.Data)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: VXR entry points at record type %d", errs.ErrBadRecord, p.Type)
	}

	want := int(last-first+1) * recSize
	if len(raw) != want {
		return fmt.Errorf("%w: block holds %d bytes for records [%d, %d], expected %d",
			errs.ErrCorruptedIndex, len(raw), first, last, want)
	}

	copy(slab[int(first)*recSize:], raw)

	return nil
}

// padUncovered fills records missed by every VXR entry with the explicit
// pad value, or the type default: zeros for numerics, spaces for text.
// The fill happens in file byte order, before the slab-wide swap.
func (d *decoder) padUncovered(slab []byte, covered []bool, v *Variable, vdr record.VDR, perRec, elemSize int) {
	pad := make([]byte, elemSize)
	if vdr.HasPad() && len(vdr.Pad) == elemSize {
		copy(pad, vdr.Pad)
	} else if vdr.DataType.IsString() {
		for i := range pad {
			pad[i] = 0x20
		}
	}

	recSize := perRec * elemSize
	for r, ok := range covered {
		if ok {
			continue
		}

		rec := slab[r*recSize : (r+1)*recSize]
		for e := 0; e < perRec; e++ {
			copy(rec[e*elemSize:(e+1)*elemSize], pad)
		}
	}
}
