// ◄◄◄ engine.go ►►►

// The streaming engine: axis-order choice, per-source-line reference
// counting, and the PutLine/GetLine state machine.

package resample

import (
	"errors"
	"fmt"
	"io"
)

// Engine errors. ErrOutOfMemory, ErrBadFilterName and ErrScanBufferFull are
// sticky: once set, an engine's Status never changes, and every subsequent
// PutLine/GetLine call fails with the same error. ErrNotReady is not sticky;
// GetLine returns it while a source row the next destination row needs has
// not been fed yet.
var (
	ErrOutOfMemory    = errors.New("resample: out of memory")
	ErrBadFilterName  = errors.New("resample: unknown filter name")
	ErrScanBufferFull = errors.New("resample: scan buffer full")
	ErrNotReady       = errors.New("resample: destination line not ready")
)

// ProgressFunc receives coarse, low-frequency progress messages. It's never
// called from PutLine or GetLine.
type ProgressFunc func(msg string)

// Config configures a new Engine. SrcWidth, SrcHeight, DstWidth, and
// DstHeight must be positive; passing a non-positive dimension is a
// programming error and NewEngine panics. Everything else is validated by
// Status() instead of panicking: an unknown FilterName or an unbuildable
// contributor list sets a sticky error rather than aborting the process.
type Config struct {
	SrcWidth, SrcHeight int
	DstWidth, DstHeight int

	Boundary Boundary

	// FilterName selects a registered filter (see FilterCount/FilterName).
	// Empty means DefaultFilterName.
	FilterName string

	// FilterScaleX/Y widen the kernel; must be >= 1.0 if set. Zero means 1.0.
	FilterScaleX, FilterScaleY float64

	// SourceOffsetX/Y shift the destination-to-source mapping in continuous
	// source coordinates.
	SourceOffsetX, SourceOffsetY float64

	// ClampLo/ClampHi bound output samples. Clamping is disabled when
	// ClampLo >= ClampHi (the zero Config therefore has no clamping).
	ClampLo, ClampHi float64

	// ContribX/ContribY let the caller supply pre-built, borrowed axis
	// plans -- e.g. to share one pair of contributor lists across several
	// per-channel engines. When set, the corresponding FilterName/
	// FilterScale/SourceOffset fields for that axis are ignored.
	ContribX, ContribY *AxisPlan

	Progress ProgressFunc
}

// Engine is a streaming, single-axis-pair resampler for one sample plane.
// An Engine is not safe for concurrent use; run separate engines on separate
// goroutines for separate channels if you want parallelism.
type Engine struct {
	srcX, srcY int
	dstX, dstY int
	boundary   Boundary
	lo, hi     float64

	clistX, clistY *AxisPlan

	pool           *scanPool
	refcount       []int
	present        []bool
	curSrcY        int
	curDstY        int
	delayX         bool
	intermediateX  int
	tmp            []float64
	dstBuf         []float64

	status   error
	progress ProgressFunc
}

func (e *Engine) progressMsgf(format string, a ...interface{}) {
	if e.progress == nil {
		return
	}
	e.progress(fmt.Sprintf(format, a...))
}

// NewEngine builds a new streaming engine from cfg. It never returns nil;
// check Status() to find out whether construction succeeded.
func NewEngine(cfg Config) *Engine {
	if cfg.SrcWidth <= 0 || cfg.SrcHeight <= 0 || cfg.DstWidth <= 0 || cfg.DstHeight <= 0 {
		panic("resample: src/dst dimensions must be positive")
	}
	if cfg.SrcWidth > 1<<16 || cfg.SrcHeight > 1<<16 {
		panic("resample: source dimensions must fit in 16 bits per axis")
	}

	e := &Engine{
		srcX: cfg.SrcWidth, srcY: cfg.SrcHeight,
		dstX: cfg.DstWidth, dstY: cfg.DstHeight,
		boundary: cfg.Boundary,
		lo:       cfg.ClampLo, hi: cfg.ClampHi,
		progress: cfg.Progress,
	}

	filterScaleX := cfg.FilterScaleX
	if filterScaleX == 0 {
		filterScaleX = 1.0
	}
	filterScaleY := cfg.FilterScaleY
	if filterScaleY == 0 {
		filterScaleY = 1.0
	}

	filterName := cfg.FilterName
	if filterName == "" {
		filterName = DefaultFilterName
	}
	filter, ok := LookupFilter(filterName)
	if !ok && (cfg.ContribX == nil || cfg.ContribY == nil) {
		e.status = ErrBadFilterName
		return e
	}

	if cfg.ContribX != nil {
		e.clistX = cfg.ContribX
	} else {
		e.progressMsgf("Building X-axis contributor list (%d -> %d)", e.srcX, e.dstX)
		plan, err := buildAxisPlan(e.srcX, e.dstX, e.boundary, filter, filterScaleX, cfg.SourceOffsetX)
		if err != nil {
			e.status = ErrOutOfMemory
			return e
		}
		e.clistX = plan
	}

	if cfg.ContribY != nil {
		e.clistY = cfg.ContribY
	} else {
		e.progressMsgf("Building Y-axis contributor list (%d -> %d)", e.srcY, e.dstY)
		plan, err := buildAxisPlan(e.srcY, e.dstY, e.boundary, filter, filterScaleY, cfg.SourceOffsetY)
		if err != nil {
			e.status = ErrOutOfMemory
			return e
		}
		e.clistY = plan
	}

	e.chooseAxisOrder()
	e.buildRefcount()

	e.pool = newScanPool(e.intermediateX)
	e.dstBuf = make([]float64, e.dstX)
	if e.delayX {
		e.tmp = make([]float64, e.intermediateX)
	}

	return e
}

// chooseAxisOrder decides whether to resample X before Y or vice versa,
// by estimating the multiply-accumulate cost of each order from the two
// axis plans' contributor counts and picking the cheaper one.
func (e *Engine) chooseAxisOrder() {
	xOps := opsCount(e.clistX)
	yOps := opsCount(e.clistY)

	xyOps := xOps*e.srcY + (4*yOps*e.dstX)/3
	yxOps := (4*yOps*e.srcX)/3 + xOps*e.dstY

	if xyOps > yxOps || (xyOps == yxOps && e.srcX < e.dstX) {
		e.delayX = true
		e.intermediateX = e.srcX
	} else {
		e.delayX = false
		e.intermediateX = e.dstX
	}
	e.progressMsgf("Resample order: delay-X=%v", e.delayX)
}

// buildRefcount counts, for each source-Y index, how many destination rows
// still need it, and initializes present to all-false.
func (e *Engine) buildRefcount() {
	e.refcount = make([]int, e.srcY)
	e.present = make([]bool, e.srcY)
	for i := range e.clistY.Lists {
		for _, c := range e.clistY.Lists[i].Contribs {
			e.refcount[c.SourceIndex]++
		}
	}
}

// Status returns the engine's sticky error, or nil if construction and all
// calls so far have succeeded.
func (e *Engine) Status() error {
	return e.status
}

// GetContribLists returns the engine's X and Y axis plans, for sharing with
// other engines driving parallel channels (via Config.ContribX/ContribY).
func (e *Engine) GetContribLists() (x, y *AxisPlan) {
	return e.clistX, e.clistY
}

// PutLine hands the engine the next source row, in source-Y order. row must
// have length equal to Config.SrcWidth.
func (e *Engine) PutLine(row []float64) error {
	if e.status != nil {
		return e.status
	}
	if len(row) != e.srcX {
		panic("resample: PutLine row length does not match SrcWidth")
	}
	if e.curSrcY >= e.srcY {
		panic("resample: PutLine called after all source rows were fed")
	}

	if e.refcount[e.curSrcY] == 0 {
		// This row is dead: no destination row references it.
		e.curSrcY++
		return nil
	}

	buf, ok := e.pool.acquire(e.curSrcY)
	if !ok {
		e.status = ErrScanBufferFull
		return e.status
	}

	if e.delayX {
		copy(buf, row)
	} else {
		resampleX(buf, row, e.clistX.Lists)
	}

	e.present[e.curSrcY] = true
	e.curSrcY++
	return nil
}

// GetLine produces the next destination row, in destination-Y order. It
// returns ErrNotReady if PutLine needs to be called with more source rows
// first, or io.EOF once all destination rows have been produced. The
// returned slice is reused by the engine; copy it before the next PutLine
// or GetLine call if you need to retain it.
func (e *Engine) GetLine() ([]float64, error) {
	if e.status != nil {
		return nil, e.status
	}
	if e.curDstY == e.dstY {
		return nil, io.EOF
	}

	list := e.clistY.Lists[e.curDstY]
	for _, c := range list.Contribs {
		if !e.present[c.SourceIndex] {
			return nil, ErrNotReady
		}
	}

	e.resampleY(list)
	e.curDstY++
	return e.dstBuf, nil
}

// resampleY accumulates every contributor's row into tmp (weighted),
// releasing each pool slot once its refcount reaches zero, then (if
// delaying X) resamples horizontally into dstBuf, then clamps.
func (e *Engine) resampleY(list ContribList) {
	tmp := e.dstBuf
	if e.delayX {
		tmp = e.tmp
	}

	for i, c := range list.Contribs {
		buf, slot, ok := e.pool.lookup(int(c.SourceIndex))
		if !ok {
			panic("resample: missing pool slot for a present source row")
		}

		if i == 0 {
			scaleYMov(tmp, buf, c.Weight)
		} else {
			scaleYAdd(tmp, buf, c.Weight)
		}

		e.refcount[c.SourceIndex]--
		if e.refcount[c.SourceIndex] == 0 {
			e.present[c.SourceIndex] = false
			e.pool.release(slot)
		}
	}

	if e.delayX {
		resampleX(e.dstBuf, tmp, e.clistX.Lists)
	}

	if e.lo < e.hi {
		clampRow(e.dstBuf, e.lo, e.hi)
	}
}

// Restart resets the engine's cursors and buffer pool so it can process a
// fresh stream of source rows. The contributor lists are retained, whether
// borrowed or built by the engine itself.
func (e *Engine) Restart() error {
	if e.status != nil {
		return e.status
	}
	e.progressMsgf("Restarting")
	e.curSrcY = 0
	e.curDstY = 0
	e.pool.reset()
	for i := range e.present {
		e.present[i] = false
		e.refcount[i] = 0
	}
	for i := range e.clistY.Lists {
		for _, c := range e.clistY.Lists[i].Contribs {
			e.refcount[c.SourceIndex]++
		}
	}
	return nil
}
