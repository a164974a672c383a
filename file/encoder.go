package file

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/SciQLop/cdfgo/compress"
	"github.com/SciQLop/cdfgo/errs"
	"github.com/SciQLop/cdfgo/format"
	"github.com/SciQLop/cdfgo/internal/pool"
	"github.com/SciQLop/cdfgo/record"
)

// defaultCopyright is written into the CDR when a file carries none.
const defaultCopyright = "Common Data Format (CDF)\nhttps://cdf.gsfc.nasa.gov"

// encoder lays out and emits the record graph of one File. Layout is
// two-pass: sizes and absolute offsets first, then emission with all
// links resolved.
type encoder struct {
	file *File

	cdr  record.CDR
	gdr  record.GDR
	adrs []record.ADR
	// aedrs holds the entry records of adrs[i] at index i.
	aedrs [][]record.AEDR

	vdrs []record.VDR
	// cprs, vxrs, vvrs and cvvrs are parallel to vdrs; exactly one of
	// vvrs[i]/cvvrs[i] is non-nil when the variable has records.
	cprs  []*record.CPR
	vxrs  []*record.VXR
	vvrs  []*record.VVR
	cvvrs []*record.CVVR
}

// Encode serializes a File into CDF bytes. Nothing is emitted on error.
func Encode(f *File, opts *SaveOptions) ([]byte, error) {
	if opts == nil {
		var err error
		opts, err = NewSaveOptions()
		if err != nil {
			return nil, err
		}
	}

	fileComp := f.compression
	fileParam := f.compressionParam
	if opts.overrideFileCompression {
		fileComp = opts.FileCompression
		fileParam = opts.FileCompressionParam
	}

	e := &encoder{file: f}

	if err := e.buildRecords(); err != nil {
		return nil, err
	}

	e.layout()

	inner := e.emit()

	image := inner
	if fileComp != format.CompressionNone {
		wrapped, err := wrapImage(inner, fileComp, fileParam)
		if err != nil {
			return nil, err
		}
		image = wrapped
	}

	if f.checksum {
		digest := md5.Sum(image)
		image = append(image, digest[:]...)
	}

	return image, nil
}

// Save encodes the file and writes it to path.
func Save(f *File, path string, opts *SaveOptions) error {
	data, err := Encode(f, opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return nil
}

// WriteTo encodes the file and writes it to w. The write happens only
// after the whole image has been built.
func WriteTo(f *File, w io.Writer, opts *SaveOptions) error {
	data, err := Encode(f, opts)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return err
	}

	return nil
}

// buildRecords constructs every record with its final content, leaving
// offsets and links zero until layout.
func (e *encoder) buildRecords() error {
	flags := int32(record.CDRFlagSingleFile)
	if e.file.majority == format.RowMajor {
		flags |= record.CDRFlagRowMajority
	}
	if e.file.checksum {
		flags |= record.CDRFlagChecksum
	}

	copyright := e.file.copyright
	if copyright == "" {
		copyright = defaultCopyright
	}

	e.cdr = record.CDR{
		Version:   e.file.version[0],
		Release:   e.file.version[1],
		Increment: e.file.version[2],
		Encoding:  format.EncodingIBMPC,
		Flags:     flags,
		Copyright: copyright,
	}

	e.gdr = record.GDR{
		RVDRHead: record.NoLink,
		ZVDRHead: record.NoLink,
		ADRHead:  record.NoLink,
		NrVars:   0,
		NumAttrs: int32(e.file.attributes.Len()),
		RMaxRec:  -1,
		RNumDims: 0,
		NzVars:   int32(e.file.variables.Len()),
		Format:   record.GDRFormatSingle,
	}

	attrNum := int32(0)
	for name, attr := range e.file.attributes.All() {
		if !record.ValidName(name) {
			return fmt.Errorf("%w: attribute %q", errs.ErrInvalidName, name)
		}

		adr := record.ADR{
			ADRNext:    record.NoLink,
			AgrEDRHead: record.NoLink,
			AzEDRHead:  record.NoLink,
			Scope:      attr.Scope(),
			Num:        attrNum,
			MaxGrEntry: -1,
			MaxZEntry:  -1,
			Name:       name,
		}

		entryType := format.RecordAgrEDR
		if attr.Scope() == format.VariableScope {
			entryType = format.RecordAzEDR
		}

		var entries []record.AEDR
		for _, entry := range attr.Entries() {
			cell := entry.Data

			numElems := int32(cell.Len())
			numStrings := int32(0)
			if cell.Type().IsString() {
				numElems = int32(len(cell.Bytes()))
				numStrings = int32(cell.Len())
			}

			entries = append(entries, record.AEDR{
				RType:      entryType,
				AEDRNext:   record.NoLink,
				AttrNum:    attrNum,
				DataType:   cell.Type(),
				Num:        entry.Number,
				NumElems:   numElems,
				NumStrings: numStrings,
				Values:     cell.Bytes(),
			})
		}

		if attr.Scope() == format.VariableScope {
			adr.NzEntries = int32(len(entries))
			adr.MaxZEntry = attr.MaxEntry()
		} else {
			adr.NgrEntries = int32(len(entries))
			adr.MaxGrEntry = attr.MaxEntry()
		}

		e.adrs = append(e.adrs, adr)
		e.aedrs = append(e.aedrs, entries)
		attrNum++
	}

	variables := e.file.variables.Values()
	sort.Slice(variables, func(i, j int) bool {
		return variables[i].num < variables[j].num
	})

	for _, v := range variables {
		if err := e.buildVariable(v); err != nil {
			return err
		}
	}

	return nil
}

// buildVariable constructs the VDR, optional CPR, VXR and data record of
// one variable, compressing its slab when the variable asks for it.
func (e *encoder) buildVariable(v *Variable) error {
	if !record.ValidName(v.name) {
		return fmt.Errorf("%w: variable %q", errs.ErrInvalidName, v.name)
	}

	data, err := v.Data()
	if err != nil {
		return err
	}

	flags := int32(0)
	if v.recVariant {
		flags |= record.VDRFlagRecordVariance
	}
	if v.pad != nil {
		flags |= record.VDRFlagPadSpecified
	}
	if v.compression != format.CompressionNone {
		flags |= record.VDRFlagCompression
	}

	dimVarys := make([]int32, len(v.dimVarys))
	for i, dv := range v.dimVarys {
		if dv {
			dimVarys[i] = -1
		}
	}

	var pad []byte
	if v.pad != nil {
		pad = v.pad.Bytes()
	}

	vdr := record.VDR{
		RType:          format.RecordZVDR,
		VDRNext:        record.NoLink,
		DataType:       v.dtype,
		MaxRec:         v.maxRec,
		VXRHead:        record.NoLink,
		VXRTail:        record.NoLink,
		Flags:          flags,
		NumElems:       int32(v.NumElems()),
		Num:            v.num,
		CPROffset:      record.NoLink,
		BlockingFactor: v.blockingFactor,
		Name:           v.name,
		ZNumDims:       int32(len(v.shape)),
		ZDimSizes:      v.shape,
		DimVarys:       dimVarys,
		Pad:            pad,
	}

	var cpr *record.CPR
	if v.compression != format.CompressionNone {
		params := []int32{}
		if v.compression == format.CompressionGzip {
			params = []int32{int32(v.compressionParam)}
		}
		cpr = &record.CPR{CType: v.compression, Params: params}
	}

	var vxr *record.VXR
	var vvr *record.VVR
	var cvvr *record.CVVR

	if v.maxRec >= 0 {
		recSize := max(v.recordElems()*data.ElemSize(), 1)

		raw := data.Bytes()
		if !v.recVariant && len(raw) > recSize {
			// A single stored record backs every virtual record; the VXR
			// below declares [0, 0].
			raw = raw[:recSize]
		}

		slab := make([]byte, len(raw))
		copy(slab, raw)

		if e.file.majority == format.ColumnMajor {
			transposeRecords(slab, v.shape, data.ElemSize(), len(slab)/recSize, false)
		}

		last := v.maxRec
		if !v.recVariant {
			last = 0
		}

		vxr = &record.VXR{
			VXRNext:      record.NoLink,
			NEntries:     1,
			NUsedEntries: 1,
			First:        []int32{0},
			Last:         []int32{last},
			Offset:       []int64{0},
		}

		if v.compression != format.CompressionNone {
			codec, err := compress.CreateCodec(v.compression, v.compressionParam)
			if err != nil {
				return err
			}

			payload, err := codec.Compress(slab)
			if err != nil {
				return err
			}

			cvvr = &record.CVVR{CType: v.compression, CSize: int64(len(payload)), Data: payload}
		} else {
			vvr = &record.VVR{Data: slab}
		}
	}

	e.vdrs = append(e.vdrs, vdr)
	e.cprs = append(e.cprs, cpr)
	e.vxrs = append(e.vxrs, vxr)
	e.vvrs = append(e.vvrs, vvr)
	e.cvvrs = append(e.cvvrs, cvvr)

	return nil
}

// layout assigns absolute offsets in emission order and resolves every
// forward and backward link.
func (e *encoder) layout() {
	off := int64(firstRecordOffset)

	off += e.cdr.Size()
	e.cdr.GDROffset = off
	off += e.gdr.Size()

	for i := range e.adrs {
		adrOffset := off
		if i == 0 {
			e.gdr.ADRHead = adrOffset
		} else {
			e.adrs[i-1].ADRNext = adrOffset
		}

		off += e.adrs[i].Size()

		entries := e.aedrs[i]
		for j := range entries {
			if j == 0 {
				if entries[j].RType == format.RecordAzEDR {
					e.adrs[i].AzEDRHead = off
				} else {
					e.adrs[i].AgrEDRHead = off
				}
			} else {
				entries[j-1].AEDRNext = off
			}

			off += entries[j].Size()
		}
	}

	for i := range e.vdrs {
		vdrOffset := off
		if i == 0 {
			e.gdr.ZVDRHead = vdrOffset
		} else {
			e.vdrs[i-1].VDRNext = vdrOffset
		}

		off += e.vdrs[i].Size()

		if e.cprs[i] != nil {
			e.vdrs[i].CPROffset = off
			off += e.cprs[i].Size()
		}

		if e.vxrs[i] != nil {
			e.vdrs[i].VXRHead = off
			e.vdrs[i].VXRTail = off
			off += e.vxrs[i].Size()

			e.vxrs[i].Offset[0] = off
			if e.cvvrs[i] != nil {
				off += e.cvvrs[i].Size()
			} else {
				off += e.vvrs[i].Size()
			}
		}
	}

	e.gdr.EOF = off
}

// emit writes every record at its assigned offset into one buffer.
func (e *encoder) emit() []byte {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	out := buf.B
	out = structural.AppendUint32(out, magicV3)
	out = structural.AppendUint32(out, magicUncompressed)

	out = e.cdr.AppendTo(out)
	out = e.gdr.AppendTo(out)

	for i := range e.adrs {
		out = e.adrs[i].AppendTo(out)
		for j := range e.aedrs[i] {
			out = e.aedrs[i][j].AppendTo(out)
		}
	}

	for i := range e.vdrs {
		out = e.vdrs[i].AppendTo(out)
		if e.cprs[i] != nil {
			out = e.cprs[i].AppendTo(out)
		}
		if e.vxrs[i] != nil {
			out = e.vxrs[i].AppendTo(out)
			if e.cvvrs[i] != nil {
				out = e.cvvrs[i].AppendTo(out)
			} else {
				out = e.vvrs[i].AppendTo(out)
			}
		}
	}

	// Keep the grown buffer in the pool; hand the caller an owned copy.
	buf.B = out
	image := make([]byte, len(out))
	copy(image, out)

	return image
}

// wrapImage compresses a plain image into the whole-file CCR layout.
func wrapImage(inner []byte, comp format.CompressionType, param int) ([]byte, error) {
	codec, err := compress.CreateCodec(comp, param)
	if err != nil {
		return nil, err
	}

	payload, err := codec.Compress(inner[firstRecordOffset:])
	if err != nil {
		return nil, err
	}

	ccr := record.CCR{
		USize: int64(len(inner) - firstRecordOffset),
		Data:  payload,
	}
	ccr.CPROffset = firstRecordOffset + ccr.Size()

	params := []int32{}
	if comp == format.CompressionGzip {
		params = []int32{int32(param)}
	}
	cpr := record.CPR{CType: comp, Params: params}

	out := make([]byte, 0, firstRecordOffset+int(ccr.Size()+cpr.Size()))
	out = structural.AppendUint32(out, magicV3)
	out = structural.AppendUint32(out, magicCompressed)
	out = ccr.AppendTo(out)
	out = cpr.AppendTo(out)

	return out, nil
}
