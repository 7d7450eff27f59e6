// ◄◄◄ main.go ►►►

// resample is a sample program that drives the resample package's
// streaming Engine across the channels of a decoded raster image.
// Usage: resample -h <height> <source-file> <target.png>
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"time"

	resample "github.com/TimTronic/imageresampler"
)

func readImageFromFile(srcFilename string) (image.Image, error) {
	file, err := os.Open(srcFilename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func writeImageToFile(img image.Image, dstFilename string) error {
	file, err := os.Create(dstFilename)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}

var lastMsgTime time.Time

func progressMsg(opts *options, msg string) {
	if !opts.verbose && !opts.debug {
		return
	}
	now := time.Now()
	if opts.debug && !lastMsgTime.IsZero() {
		fmt.Printf("%v\n", now.Sub(lastMsgTime))
	}
	fmt.Printf("%s\n", msg)
	lastMsgTime = now
}

// channelPlane is a single-channel plane of samples in [0, 255], extracted
// from an image.Image, used to drive one resample.Engine.
type channelPlane struct {
	w, h int
	get  func(x, y int) float64 // reads a sample from the source image
}

// fourChannels splits img into R, G, B, A planes, each readable by row.
func fourChannels(img image.Image) [4]channelPlane {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	idx := [4]func(c color.NRGBA) uint8{
		func(c color.NRGBA) uint8 { return c.R },
		func(c color.NRGBA) uint8 { return c.G },
		func(c color.NRGBA) uint8 { return c.B },
		func(c color.NRGBA) uint8 { return c.A },
	}
	var planes [4]channelPlane
	for k := 0; k < 4; k++ {
		k := k
		planes[k] = channelPlane{w: w, h: h, get: func(x, y int) float64 {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			return float64(idx[k](c))
		}}
	}
	return planes
}

func resizeImage(opts *options, img image.Image) (*image.NRGBA, error) {
	srcBounds := img.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()

	dstH := opts.height
	dstW := int(0.5 + (float64(srcW)/float64(srcH))*float64(dstH))
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	progress := func(msg string) { progressMsg(opts, msg) }

	baseCfg := resample.Config{
		SrcWidth: srcW, SrcHeight: srcH,
		DstWidth: dstW, DstHeight: dstH,
		Boundary:   resample.BoundaryClamp,
		FilterName: opts.filter,
		ClampLo:    0, ClampHi: 255,
		Progress: progress,
	}

	planes := fourChannels(img)

	progressMsg(opts, "Resampling channel 0 (building shared contributor lists)")
	out0, err := resizeChannelWithSharedPlans(planes[0], dstW, dstH, baseCfg, nil, nil)
	if err != nil {
		return nil, err
	}
	sharedX, sharedY := out0.clistX, out0.clistY

	results := [4][]float64{out0.samples, nil, nil, nil}
	for k := 1; k < 4; k++ {
		progressMsg(opts, fmt.Sprintf("Resampling channel %d", k))
		r, err := resizeChannelWithSharedPlans(planes[k], dstW, dstH, baseCfg, sharedX, sharedY)
		if err != nil {
			return nil, err
		}
		results[k] = r.samples
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			i := y*dstW + x
			dst.SetNRGBA(x, y, color.NRGBA{
				R: clampByte(results[0][i]),
				G: clampByte(results[1][i]),
				B: clampByte(results[2][i]),
				A: clampByte(results[3][i]),
			})
		}
	}
	return dst, nil
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

type channelResult struct {
	samples        []float64
	clistX, clistY *resample.AxisPlan
}

// resizeChannelWithSharedPlans resizes one channel, reusing sharedX/sharedY
// (built by an earlier channel) when supplied, and returning the plans it
// used so later channels can reuse them too -- this is GetContribLists in
// action, avoiding rebuilding identical weight tables four times per image.
func resizeChannelWithSharedPlans(plane channelPlane, dstW, dstH int, cfg resample.Config, sharedX, sharedY *resample.AxisPlan) (*channelResult, error) {
	cfg.SrcWidth, cfg.SrcHeight = plane.w, plane.h
	cfg.DstWidth, cfg.DstHeight = dstW, dstH
	cfg.ContribX, cfg.ContribY = sharedX, sharedY

	eng := resample.NewEngine(cfg)
	if err := eng.Status(); err != nil {
		return nil, err
	}
	x, y := eng.GetContribLists()

	out := make([]float64, dstW*dstH)
	outY := 0
	row := make([]float64, plane.w)

	for yy := 0; yy < plane.h; yy++ {
		for xx := 0; xx < plane.w; xx++ {
			row[xx] = plane.get(xx, yy)
		}
		if err := eng.PutLine(row); err != nil {
			return nil, err
		}
		for {
			dst, err := eng.GetLine()
			if err == resample.ErrNotReady {
				break
			}
			if err == io.EOF {
				return &channelResult{samples: out, clistX: x, clistY: y}, nil
			}
			if err != nil {
				return nil, err
			}
			copy(out[outY*dstW:(outY+1)*dstW], dst)
			outY++
		}
	}
	return &channelResult{samples: out, clistX: x, clistY: y}, nil
}

type options struct {
	height      int
	filter      string
	srcFilename string
	dstFilename string
	verbose     bool
	debug       bool
}

func main() {
	opts := new(options)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  resample [options] <source-file> <target.png>\n")
		flag.PrintDefaults()
	}

	flag.IntVar(&opts.height, "h", 0, "Target image height, in pixels")
	flag.StringVar(&opts.filter, "filter", resample.DefaultFilterName, "Resampling filter name")
	flag.BoolVar(&opts.verbose, "verbose", false, "Verbose output")
	flag.BoolVar(&opts.debug, "debug", false, "Debugging output")
	flag.Parse()

	if flag.NArg() != 2 || opts.height < 1 {
		flag.Usage()
		os.Exit(2)
	}

	opts.srcFilename = flag.Arg(0)
	opts.dstFilename = flag.Arg(1)

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	progressMsg(opts, "Reading source file")
	srcImg, err := readImageFromFile(opts.srcFilename)
	if err != nil {
		return err
	}

	dst, err := resizeImage(opts, srcImg)
	if err != nil {
		return err
	}

	progressMsg(opts, "Writing target file")
	if err := writeImageToFile(dst, opts.dstFilename); err != nil {
		return err
	}
	progressMsg(opts, "Done")
	return nil
}
