package file

import "github.com/SciQLop/cdfgo/format"

// swapElemSize returns the byte-swap granularity for a data type: the
// element size for numerics, the float64 half for epoch16, 0 for
// character types which are never swapped.
func swapElemSize(t format.DataType) int {
	if t.IsString() {
		return 0
	}
	if t == format.TypeEpoch16 {
		return 8
	}

	return t.Size()
}

// swapSlab reverses every size-byte group in place, converting between
// big- and little-endian element layouts.
func swapSlab(buf []byte, size int) {
	if size <= 1 {
		return
	}

	for off := 0; off+size <= len(buf); off += size {
		for i, j := off, off+size-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
}

// rowIndexToColumn maps a row-major linear element index to its
// column-major position for the given shape.
func rowIndexToColumn(row int, shape []int32) int {
	col := 0

	// Decompose the row-major index innermost-dimension first; the
	// column-major stride grows with the outer dimensions instead.
	for d := len(shape) - 1; d >= 0; d-- {
		dim := int(shape[d])
		idx := row % dim
		row /= dim

		colStride := 1
		for k := 0; k < d; k++ {
			colStride *= int(shape[k])
		}
		col += idx * colStride
	}

	return col
}

// transposeRecords converts every record of a slab between column-major
// and row-major element order. toRow selects the direction: true reads a
// column-major record into row-major order (decode), false the reverse
// (encode). Scalars and rank-1 records are unaffected.
func transposeRecords(slab []byte, shape []int32, elemSize, records int, toRow bool) {
	if len(shape) < 2 || elemSize <= 0 || records <= 0 {
		return
	}

	perRec := 1
	for _, d := range shape {
		perRec *= int(d)
	}
	if perRec <= 1 {
		return
	}

	recSize := perRec * elemSize
	tmp := make([]byte, recSize)

	for r := 0; r < records; r++ {
		rec := slab[r*recSize : (r+1)*recSize]
		copy(tmp, rec)

		for row := 0; row < perRec; row++ {
			col := rowIndexToColumn(row, shape)
			if toRow {
				copy(rec[row*elemSize:(row+1)*elemSize], tmp[col*elemSize:(col+1)*elemSize])
			} else {
				copy(rec[col*elemSize:(col+1)*elemSize], tmp[row*elemSize:(row+1)*elemSize])
			}
		}
	}
}
