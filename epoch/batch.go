package epoch

import (
	"golang.org/x/sys/cpu"
)

// batchKernel is the tt2000 batch conversion selected at package load.
// Both kernels are data-deterministic: they produce identical results for
// the same input regardless of element order.
var batchKernel func(in []TT2000, out []int64)

func init() {
	// The wide kernel is an unrolled branchless form that autovectorizes
	// on SIMD-capable targets; keep the scalar loop as the reference
	// everywhere else.
	if cpu.X86.HasAVX2 || cpu.X86.HasSSE42 || cpu.ARM64.HasASIMD {
		batchKernel = toNs1970TT2000Wide
	} else {
		batchKernel = toNs1970TT2000Scalar
	}
}

// ToNs1970TT2000 converts a batch of tt2000 values onto the NS1970 axis.
// out must be at least as long as in. Inputs sorted in ascending order hit
// an affine fast path once past the final leap-second threshold; unsorted
// inputs are handled correctly element by element.
func ToNs1970TT2000(in []TT2000, out []int64) {
	batchKernel(in, out[:len(in)])
}

// ToNs1970Epoch converts a batch of epoch values onto the NS1970 axis.
func ToNs1970Epoch(in []Epoch, out []int64) {
	out = out[:len(in)]
	for i, e := range in {
		out[i] = e.Ns1970()
	}
}

// ToNs1970Epoch16 converts a batch of epoch16 values onto the NS1970 axis.
func ToNs1970Epoch16(in []Epoch16, out []int64) {
	out = out[:len(in)]
	for i, e := range in {
		out[i] = e.Ns1970()
	}
}

// toNs1970TT2000Scalar is the reference kernel. Once an input crosses the
// last leap threshold the conversion is a pure shift, so the tail of a
// sorted batch reduces to one addition per element; out-of-order elements
// before the threshold take the full lookup path.
func toNs1970TT2000Scalar(in []TT2000, out []int64) {
	table := *leapTable.Load()
	if len(table) == 0 {
		for i, t := range in {
			out[i] = int64(t) + tt2000Shift + j2000LeapSeconds*nsPerSec
		}

		return
	}

	last := table[len(table)-1]
	affineShift := tt2000Shift - (last.Seconds-j2000LeapSeconds)*nsPerSec

	i := 0
	for ; i < len(in); i++ {
		t := in[i]
		if int64(t) >= int64(last.Threshold) {
			break
		}

		out[i] = t.Ns1970()
	}

	for ; i < len(in); i++ {
		t := in[i]
		if int64(t) < int64(last.Threshold) {
			out[i] = t.Ns1970()
			continue
		}

		out[i] = int64(t) + affineShift
	}
}

// toNs1970TT2000Wide processes four elements per step with the branchless
// leap lookup, a shape the compiler vectorizes on AVX2/ASIMD targets. It
// must produce output bit-identical to the scalar kernel.
func toNs1970TT2000Wide(in []TT2000, out []int64) {
	i := 0

	for ; i+4 <= len(in); i += 4 {
		t0, t1, t2, t3 := in[i], in[i+1], in[i+2], in[i+3]

		l0 := LeapSecondsBranchless(t0)
		l1 := LeapSecondsBranchless(t1)
		l2 := LeapSecondsBranchless(t2)
		l3 := LeapSecondsBranchless(t3)

		out[i] = int64(t0) + tt2000Shift - (l0-j2000LeapSeconds)*nsPerSec
		out[i+1] = int64(t1) + tt2000Shift - (l1-j2000LeapSeconds)*nsPerSec
		out[i+2] = int64(t2) + tt2000Shift - (l2-j2000LeapSeconds)*nsPerSec
		out[i+3] = int64(t3) + tt2000Shift - (l3-j2000LeapSeconds)*nsPerSec
	}

	for ; i < len(in); i++ {
		out[i] = int64(in[i]) + tt2000Shift - (LeapSecondsBranchless(in[i])-j2000LeapSeconds)*nsPerSec
	}
}
