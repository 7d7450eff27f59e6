// ◄◄◄ filters.go ►►►

// The filter registry: a fixed, named table of analytical 1-D reconstruction
// filters. Each filter is a pure function of t, defined on the whole real
// line but guaranteed to evaluate to 0 outside [-support, support].
//
// There's no need to make these functions fast; they're only called while
// building a contributor list (see contrib.go), never on the PutLine/GetLine
// hot path.

package resample

import "math"

// Filter is a named 1-D reconstruction kernel.
type Filter struct {
	Name    string
	Support float64
	Eval    func(t float64) float64
}

// DefaultFilterName is used by NewEngine when Config.FilterName is empty.
// Callers may reassign it before constructing an engine.
var DefaultFilterName = "lanczos3"

var registry []Filter
var registryIndex map[string]int

func init() {
	registry = []Filter{
		{"box", 0.5, boxFilter},
		{"tent", 1.0, tentFilter},
		{"bell", 1.5, bellFilter},
		{"b-spline", 2.0, bSplineFilter},
		{"mitchell", 2.0, mitchellFilter},
		{"catmullrom", 2.0, catmullRomFilter},
		{"quadratic_interp", 1.5, quadraticInterpFilter},
		{"quadratic_approx", 1.5, quadraticApproxFilter},
		{"quadratic_mix", 1.5, quadraticMixFilter},
		{"lanczos3", 3.0, lanczosFilter(3)},
		{"lanczos4", 4.0, lanczosFilter(4)},
		{"lanczos6", 6.0, lanczosFilter(6)},
		{"lanczos12", 12.0, lanczosFilter(12)},
		{"blackman", 3.0, blackmanFilter},
		{"gaussian", 1.25, gaussianFilter},
		{"kaiser", 3.0, kaiserFilter},
	}
	registryIndex = make(map[string]int, len(registry))
	for i, f := range registry {
		registryIndex[f.Name] = i
	}
}

// LookupFilter finds a registered filter by exact name. ok is false for an
// unrecognized name.
func LookupFilter(name string) (f *Filter, ok bool) {
	i, found := registryIndex[name]
	if !found {
		return nil, false
	}
	return &registry[i], true
}

// FilterCount returns the number of registered filters.
func FilterCount() int {
	return len(registry)
}

// FilterName returns the name of the i'th registered filter, or "" if i is
// out of range.
func FilterName(i int) string {
	if i < 0 || i >= len(registry) {
		return ""
	}
	return registry[i].Name
}

// cleanEpsilon floors filter values with a tiny magnitude to exactly 0, to
// avoid long tails of denormals in filters with an unbounded-looking ripple
// (blackman, gaussian, lanczos*, kaiser).
const cleanEpsilon = 1.25e-5

func clean(v float64) float64 {
	if math.Abs(v) < cleanEpsilon {
		return 0.0
	}
	return v
}

// sinc(x) = sin(pi*x)/(pi*x), with a Taylor expansion for |x| < 0.01 to
// avoid catastrophic cancellation.
func sinc(x float64) float64 {
	x *= math.Pi
	if x > -0.01*math.Pi && x < 0.01*math.Pi {
		return 1.0 + x*x*(-1.0/6.0+x*x*(1.0/120.0))
	}
	return math.Sin(x) / x
}

func boxFilter(t float64) float64 {
	if t >= -0.5 && t < 0.5 {
		return 1.0
	}
	return 0.0
}

func tentFilter(t float64) float64 {
	if t < 0.0 {
		t = -t
	}
	if t < 1.0 {
		return 1.0 - t
	}
	return 0.0
}

func bellFilter(t float64) float64 {
	if t < 0.0 {
		t = -t
	}
	if t < 0.5 {
		return 0.75 - t*t
	}
	if t < 1.5 {
		t -= 1.5
		return 0.5 * t * t
	}
	return 0.0
}

func bSplineFilter(t float64) float64 {
	if t < 0.0 {
		t = -t
	}
	if t < 1.0 {
		tt := t * t
		return 0.5*tt*t - tt + 2.0/3.0
	}
	if t < 2.0 {
		t = 2.0 - t
		return (1.0 / 6.0) * (t * t * t)
	}
	return 0.0
}

// quadratic implements Dodgson's family of quadratic interpolation kernels,
// parameterized by R. R=1.0 is "interp", R=0.5 is "approx", R=0.8 is "mix".
func quadratic(t, r float64) float64 {
	if t < 0.0 {
		t = -t
	}
	if t < 1.5 {
		tt := t * t
		if t <= 0.5 {
			return (-2.0*r)*tt + 0.5*(r+1.0)
		}
		return r*tt + (-2.0*r-0.5)*t + 0.75*(r+1.0)
	}
	return 0.0
}

func quadraticInterpFilter(t float64) float64 { return quadratic(t, 1.0) }
func quadraticApproxFilter(t float64) float64 { return quadratic(t, 0.5) }
func quadraticMixFilter(t float64) float64    { return quadratic(t, 0.8) }

// mitchell implements the Mitchell-Netravali cubic family, parameterized by
// B and C. (B,C) = (1/3,1/3) is "mitchell"; (0,0.5) is "catmullrom".
func mitchell(t, b, c float64) float64 {
	if t < 0.0 {
		t = -t
	}
	tt := t * t
	if t < 1.0 {
		v := (12.0-9.0*b-6.0*c)*(t*tt) +
			(-18.0+12.0*b+6.0*c)*tt +
			(6.0 - 2.0*b)
		return v / 6.0
	}
	if t < 2.0 {
		v := (-b-6.0*c)*(t*tt) +
			(6.0*b+30.0*c)*tt +
			(-12.0*b-48.0*c)*t +
			(8.0*b + 24.0*c)
		return v / 6.0
	}
	return 0.0
}

func mitchellFilter(t float64) float64   { return mitchell(t, 1.0/3.0, 1.0/3.0) }
func catmullRomFilter(t float64) float64 { return mitchell(t, 0.0, 0.5) }

func lanczosFilter(lobes float64) func(float64) float64 {
	return func(t float64) float64 {
		if t < 0.0 {
			t = -t
		}
		if t < lobes {
			return clean(sinc(t) * sinc(t/lobes))
		}
		return 0.0
	}
}

func blackmanWindow(x float64) float64 {
	return 0.42659071 + 0.49656062*math.Cos(math.Pi*x) + 0.07684867*math.Cos(2.0*math.Pi*x)
}

func blackmanFilter(t float64) float64 {
	if t < 0.0 {
		t = -t
	}
	if t < 3.0 {
		return clean(sinc(t) * blackmanWindow(t/3.0))
	}
	return 0.0
}

func gaussianFilter(t float64) float64 {
	if t < 0.0 {
		t = -t
	}
	const support = 1.25
	if t < support {
		return clean(math.Exp(-2.0*t*t) * math.Sqrt(2.0/math.Pi) * blackmanWindow(t/support))
	}
	return 0.0
}

// besselI0 is the zeroth-order modified Bessel function of the first kind,
// via its ascending series, to a relative epsilon of 1e-16.
func besselI0(x float64) float64 {
	const epsilonRatio = 1e-16
	xh := 0.5 * x
	sum := 1.0
	pow := 1.0
	k := 0
	ds := 1.0
	for ds > sum*epsilonRatio {
		k++
		pow = pow * (xh / float64(k))
		ds = pow * pow
		sum += ds
	}
	return sum
}

func kaiserWindow(alpha, halfWidth, x float64) float64 {
	ratio := x / halfWidth
	return besselI0(alpha*math.Sqrt(1.0-ratio*ratio)) / besselI0(alpha)
}

func kaiserFilter(t float64) float64 {
	if t < 0.0 {
		t = -t
	}
	const support = 3.0
	if t < support {
		const att = 40.0
		alpha := math.Exp(math.Log(0.58417*(att-20.96))*0.4) + 0.07886*(att-20.96)
		return clean(sinc(t) * kaiserWindow(alpha, support, t))
	}
	return 0.0
}
