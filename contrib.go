// ◄◄◄ contrib.go ►►►

// The contributor-list builder: converts a continuous filter kernel and a
// geometric mapping between a source and destination axis length into a
// sparse, normalized weight table with boundary handling baked in.

package resample

import (
	"errors"
	"math"
)

// Boundary selects how out-of-range source indices are resolved.
type Boundary int

const (
	BoundaryClamp Boundary = iota
	BoundaryWrap
	BoundaryReflect
)

// Contrib is a single (source index, weight) pair contributing to one
// destination sample of one axis.
type Contrib struct {
	SourceIndex uint16
	Weight      float64
}

// ContribList is the ordered, non-empty list of Contrib for a single
// destination sample. The weights always sum to exactly 1.0.
type ContribList struct {
	Contribs []Contrib
}

// AxisPlan holds the per-destination-index contributor lists for one axis.
// Owned reports whether this module built the plan itself (true) or the
// caller supplied it (false, "borrowed"). Go's garbage collector makes this
// distinction free of any manual-deallocation consequence, but it still
// documents intent and is preserved verbatim across Engine.Restart.
type AxisPlan struct {
	Lists []ContribList
	Owned bool
}

func posmod(x, y int) int {
	if x >= 0 {
		return x % y
	}
	m := (-x) % y
	if m != 0 {
		m = y - m
	}
	return m
}

// resolveBoundary maps a possibly out-of-range source index j into
// [0, srcLen) according to op.
func resolveBoundary(j, srcLen int, op Boundary) int {
	if j < 0 {
		switch op {
		case BoundaryReflect:
			n := -j
			if n >= srcLen {
				n = srcLen - 1
			}
			return n
		case BoundaryWrap:
			return posmod(j, srcLen)
		default: // BoundaryClamp
			return 0
		}
	}
	if j >= srcLen {
		switch op {
		case BoundaryReflect:
			n := (srcLen - j) + (srcLen - 1)
			if n < 0 {
				n = 0
			}
			return n
		case BoundaryWrap:
			return posmod(j, srcLen)
		default: // BoundaryClamp
			return srcLen - 1
		}
	}
	return j
}

// errEmptyFootprint signals that a destination sample ended up with no
// surviving contributor; NewEngine reports this the same way it reports an
// allocation failure, as ErrOutOfMemory.
var errEmptyFootprint = errors.New("resample: empty contributor footprint")

// buildAxisPlan constructs the contributor list for one axis: for each
// destination index it finds the footprint of source indices the filter
// kernel covers, evaluates the kernel at each, normalizes the weights to
// sum to 1, and resolves any out-of-range index via op.
func buildAxisPlan(srcLen, dstLen int, op Boundary, filter *Filter, filterScale, srcOfs float64) (*AxisPlan, error) {
	support := filter.Support
	xscale := float64(dstLen) / float64(srcLen)
	down := xscale < 1.0

	var halfWidth float64
	if down {
		halfWidth = (support / xscale) * filterScale
	} else {
		halfWidth = support * filterScale
	}

	type bounds struct {
		center      float64
		left, right int
	}
	footprints := make([]bounds, dstLen)
	for i := 0; i < dstLen; i++ {
		center := (float64(i)+0.5)/xscale - 0.5 + srcOfs
		left := int(math.Floor(center - halfWidth))
		right := int(math.Ceil(center + halfWidth))
		footprints[i] = bounds{center, left, right}
	}

	lists := make([]ContribList, dstLen)

	for i := 0; i < dstLen; i++ {
		fp := footprints[i]

		raw := make([]float64, 0, fp.right-fp.left+1)
		sum := 0.0
		for j := fp.left; j <= fp.right; j++ {
			var arg float64
			if down {
				arg = (fp.center - float64(j)) * xscale / filterScale
			} else {
				arg = (fp.center - float64(j)) / filterScale
			}
			v := filter.Eval(arg)
			raw = append(raw, v)
			sum += v
		}

		if sum == 0.0 {
			return nil, errEmptyFootprint
		}
		norm := 1.0 / sum

		contribs := make([]Contrib, 0, len(raw))
		maxIdx := -1
		maxW := -1e20
		total := 0.0

		for k, j := 0, fp.left; j <= fp.right; k, j = k+1, j+1 {
			w := raw[k] * norm
			if w == 0.0 {
				continue
			}
			srcIdx := resolveBoundary(j, srcLen, op)
			contribs = append(contribs, Contrib{SourceIndex: uint16(srcIdx), Weight: w})
			total += w
			if w > maxW {
				maxW = w
				maxIdx = len(contribs) - 1
			}
		}

		if maxIdx == -1 || len(contribs) == 0 {
			return nil, errEmptyFootprint
		}

		contribs[maxIdx].Weight += 1.0 - total
		// The correction above can be rounded away by the additions that
		// follow it; the last entry absorbs what is left, so that summing
		// the list in order gives exactly 1.0.
		last := len(contribs) - 1
		head := 0.0
		for _, c := range contribs[:last] {
			head += c.Weight
		}
		if head+contribs[last].Weight != 1.0 {
			contribs[last].Weight = 1.0 - head
		}

		lists[i] = ContribList{Contribs: contribs}
	}

	return &AxisPlan{Lists: lists, Owned: true}, nil
}

// opsCount is the total number of (source_index, weight) entries across all
// destination lists of an axis plan -- the cost proxy used by the axis-order
// chooser in engine.go.
func opsCount(plan *AxisPlan) int {
	n := 0
	for _, l := range plan.Lists {
		n += len(l.Contribs)
	}
	return n
}
