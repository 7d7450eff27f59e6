package resample

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runEngine feeds every row of src (srcH rows of srcW samples each) through
// eng and collects every destination row it yields, copying each one since
// GetLine's slice is reused.
func runEngine(t *testing.T, eng *Engine, src [][]float64) [][]float64 {
	t.Helper()
	require.NoError(t, eng.Status())

	var out [][]float64
	for _, row := range src {
		require.NoError(t, eng.PutLine(row))
		for {
			line, err := eng.GetLine()
			if err == ErrNotReady {
				break
			}
			if err == io.EOF {
				return out
			}
			require.NoError(t, err)
			cp := make([]float64, len(line))
			copy(cp, line)
			out = append(out, cp)
		}
	}
	for {
		line, err := eng.GetLine()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		cp := make([]float64, len(line))
		copy(cp, line)
		out = append(out, cp)
	}
}

func constRows(w, h int, v float64) [][]float64 {
	rows := make([][]float64, h)
	for y := range rows {
		row := make([]float64, w)
		for x := range row {
			row[x] = v
		}
		rows[y] = row
	}
	return rows
}

// tent filter at 1:1 scale is an identity resample.
func TestScenarioTentIdentity4x4(t *testing.T) {
	src := [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	eng := NewEngine(Config{
		SrcWidth: 4, SrcHeight: 4, DstWidth: 4, DstHeight: 4,
		FilterName: "tent", Boundary: BoundaryClamp,
	})
	out := runEngine(t, eng, src)
	require.Len(t, out, 4)
	for y := range src {
		for x := range src[y] {
			assert.InDelta(t, src[y][x], out[y][x], 1e-9)
		}
	}
}

// box filter downsamples 4x4 to 2x2 by averaging 2x2 blocks.
func TestScenarioBoxDownsample4to2(t *testing.T) {
	src := [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	eng := NewEngine(Config{
		SrcWidth: 4, SrcHeight: 4, DstWidth: 2, DstHeight: 2,
		FilterName: "box", Boundary: BoundaryClamp,
	})
	out := runEngine(t, eng, src)
	require.Len(t, out, 2)
	want := [][]float64{
		{3.5, 5.5},
		{11.5, 13.5},
	}
	for y := range want {
		for x := range want[y] {
			assert.InDelta(t, want[y][x], out[y][x], 1e-9)
		}
	}
}

// tent filter upsamples a single column, 2 source rows to 4.
func TestScenarioTentUpsampleColumn2to4(t *testing.T) {
	src := [][]float64{{0}, {10}}
	eng := NewEngine(Config{
		SrcWidth: 1, SrcHeight: 2, DstWidth: 1, DstHeight: 4,
		FilterName: "tent", Boundary: BoundaryClamp,
	})
	out := runEngine(t, eng, src)
	require.Len(t, out, 4)
	for _, row := range out {
		assert.GreaterOrEqual(t, row[0], -1e-9)
		assert.LessOrEqual(t, row[0], 10+1e-9)
	}
	// monotonically non-decreasing since source is monotonic and tent is
	// a convex combination of the two nearest samples.
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i][0], out[i-1][0]-1e-9)
	}
}

// lanczos3 on an 8x8 impulse keeps its energy mass near 1 and
// its peak response at the same relative location as the impulse.
func TestScenarioLanczos3Impulse8x8(t *testing.T) {
	src := make([][]float64, 8)
	for y := range src {
		src[y] = make([]float64, 8)
	}
	src[4][4] = 1.0

	eng := NewEngine(Config{
		SrcWidth: 8, SrcHeight: 8, DstWidth: 8, DstHeight: 8,
		FilterName: "lanczos3", Boundary: BoundaryClamp,
	})
	out := runEngine(t, eng, src)
	require.Len(t, out, 8)

	maxV, maxX, maxY := out[0][0], 0, 0
	sum := 0.0
	for y := range out {
		for x := range out[y] {
			sum += out[y][x]
			if out[y][x] > maxV {
				maxV, maxX, maxY = out[y][x], x, y
			}
		}
	}
	assert.Equal(t, 4, maxX)
	assert.Equal(t, 4, maxY)
	assert.InDelta(t, 1.0, sum, 1e-6)
}

// box filter with wrap boundary is shift-invariant: shifting the
// source by one column and one row (with wraparound) shifts the output the
// same way.
func TestScenarioBoxWrapShiftInvariance4x4(t *testing.T) {
	base := [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	shifted := make([][]float64, 4)
	for y := range shifted {
		shifted[y] = make([]float64, 4)
		for x := range shifted[y] {
			shifted[y][x] = base[(y+1)%4][(x+1)%4]
		}
	}

	cfg := Config{
		SrcWidth: 4, SrcHeight: 4, DstWidth: 4, DstHeight: 4,
		FilterName: "box", Boundary: BoundaryWrap,
	}
	out1 := runEngine(t, NewEngine(cfg), base)
	out2 := runEngine(t, NewEngine(cfg), shifted)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.InDelta(t, out1[(y+1)%4][(x+1)%4], out2[y][x], 1e-9)
		}
	}
}

// a filter_scale of 2.0 roughly doubles the tent kernel's
// footprint, so a 1:1 resample no longer reproduces the source exactly and
// spreads weight onto neighboring samples instead.
func TestScenarioFilterScaleWidensTentFootprint(t *testing.T) {
	src := [][]float64{
		{0, 0, 0, 0},
		{0, 100, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	narrow := NewEngine(Config{
		SrcWidth: 4, SrcHeight: 4, DstWidth: 4, DstHeight: 4,
		FilterName: "tent", Boundary: BoundaryClamp,
	})
	wide := NewEngine(Config{
		SrcWidth: 4, SrcHeight: 4, DstWidth: 4, DstHeight: 4,
		FilterName: "tent", Boundary: BoundaryClamp,
		FilterScaleX: 2.0, FilterScaleY: 2.0,
	})

	outNarrow := runEngine(t, narrow, src)
	outWide := runEngine(t, wide, src)

	nonzero := func(rows [][]float64) int {
		n := 0
		for _, row := range rows {
			for _, v := range row {
				if v > 1e-9 {
					n++
				}
			}
		}
		return n
	}
	assert.Greater(t, nonzero(outWide), nonzero(outNarrow))
}

// Property: a constant source plane resamples to (approximately) the same
// constant, for every filter and boundary op.
func TestConstantPlaneStaysConstant(t *testing.T) {
	boundaries := []Boundary{BoundaryClamp, BoundaryWrap, BoundaryReflect}
	for i := 0; i < FilterCount(); i++ {
		name := FilterName(i)
		for _, bo := range boundaries {
			src := constRows(5, 5, 7.0)
			eng := NewEngine(Config{
				SrcWidth: 5, SrcHeight: 5, DstWidth: 3, DstHeight: 8,
				FilterName: name, Boundary: bo,
			})
			out := runEngine(t, eng, src)
			require.Len(t, out, 8, "filter=%s boundary=%v", name, bo)
			for _, row := range out {
				for _, v := range row {
					assert.InDelta(t, 7.0, v, 1e-6, "filter=%s boundary=%v", name, bo)
				}
			}
		}
	}
}

// Property: a stream produces exactly DstHeight rows for exactly SrcHeight
// rows fed in, no more and no fewer.
func TestRoundTripRowCounts(t *testing.T) {
	sizes := [][2]int{{4, 4}, {4, 2}, {2, 4}, {9, 3}, {3, 9}}
	for _, sz := range sizes {
		srcH, dstH := sz[0], sz[1]
		src := constRows(2, srcH, 1.0)
		eng := NewEngine(Config{
			SrcWidth: 2, SrcHeight: srcH, DstWidth: 2, DstHeight: dstH,
			FilterName: "lanczos3", Boundary: BoundaryClamp,
		})
		out := runEngine(t, eng, src)
		assert.Len(t, out, dstH, "src=%d dst=%d", srcH, dstH)
	}
}

// Property: once the stream is fully drained, every source row's refcount
// is zero and every pool slot is free.
func TestRefcountAndPoolFullyDrained(t *testing.T) {
	src := constRows(6, 6, 3.0)
	eng := NewEngine(Config{
		SrcWidth: 6, SrcHeight: 6, DstWidth: 5, DstHeight: 5,
		FilterName: "mitchell", Boundary: BoundaryClamp,
	})
	runEngine(t, eng, src)

	for i, rc := range eng.refcount {
		assert.Equal(t, 0, rc, "row %d refcount", i)
	}
	for i, present := range eng.present {
		assert.False(t, present, "row %d still marked present", i)
	}
	for i, slot := range eng.pool.slots {
		assert.Equal(t, -1, slot.tag, "pool slot %d still tagged", i)
	}
}

func TestGetLineNotReadyThenEOF(t *testing.T) {
	eng := NewEngine(Config{
		SrcWidth: 1, SrcHeight: 3, DstWidth: 1, DstHeight: 1,
		FilterName: "box", Boundary: BoundaryClamp,
	})
	_, err := eng.GetLine()
	assert.Equal(t, ErrNotReady, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, eng.PutLine([]float64{float64(i)}))
	}
	_, err = eng.GetLine()
	require.NoError(t, err)
	_, err = eng.GetLine()
	assert.Equal(t, io.EOF, err)
}

func TestBadFilterNameIsSticky(t *testing.T) {
	eng := NewEngine(Config{
		SrcWidth: 2, SrcHeight: 2, DstWidth: 2, DstHeight: 2,
		FilterName: "no-such-filter",
	})
	assert.Equal(t, ErrBadFilterName, eng.Status())
	assert.Equal(t, ErrBadFilterName, eng.PutLine([]float64{0, 0}))
	_, err := eng.GetLine()
	assert.Equal(t, ErrBadFilterName, err)
}

func TestSharedContribListsAvoidRebuilding(t *testing.T) {
	first := NewEngine(Config{
		SrcWidth: 6, SrcHeight: 6, DstWidth: 4, DstHeight: 4,
		FilterName: "catmullrom", Boundary: BoundaryReflect,
	})
	require.NoError(t, first.Status())
	x, y := first.GetContribLists()
	require.True(t, x.Owned)
	require.True(t, y.Owned)

	second := NewEngine(Config{
		SrcWidth: 6, SrcHeight: 6, DstWidth: 4, DstHeight: 4,
		ContribX: x, ContribY: y,
	})
	require.NoError(t, second.Status())
	x2, y2 := second.GetContribLists()
	assert.Same(t, x, x2)
	assert.Same(t, y, y2)
}

func TestRestartReusesContribListsAndResetsState(t *testing.T) {
	src := constRows(4, 4, 2.0)
	eng := NewEngine(Config{
		SrcWidth: 4, SrcHeight: 4, DstWidth: 4, DstHeight: 4,
		FilterName: "tent", Boundary: BoundaryClamp,
	})
	first := runEngine(t, eng, src)
	require.NoError(t, eng.Restart())
	second := runEngine(t, eng, src)
	require.Equal(t, len(first), len(second))
	for y := range first {
		for x := range first[y] {
			assert.InDelta(t, first[y][x], second[y][x], 1e-9)
		}
	}
}
