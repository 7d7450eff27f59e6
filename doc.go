// ◄◄◄ doc.go ►►►

/*
Package resample performs high-quality, streaming separable resampling of a
single-channel image plane.

This is a brief summary of how to use the package. More details are
available in the API documentation later in this document.

Resample rescales a plane of float64 samples from an arbitrary source
resolution to an arbitrary destination resolution by 1-D convolution along
each axis with a named reconstruction filter (box, tent, Mitchell, Lanczos,
and so on; see FilterCount and FilterName for the full list). Unlike a
whole-image resizer, the engine is streaming: the caller feeds source
scanlines one at a time and pulls destination scanlines as soon as enough
source lines have been buffered, so a caller never has to hold the whole
image in memory at once.

Create a new Engine with the sizes, boundary handling, and filter you want:

    eng := resample.NewEngine(resample.Config{
        SrcWidth: srcW, SrcHeight: srcH,
        DstWidth: dstW, DstHeight: dstH,
        Boundary:   resample.BoundaryClamp,
        FilterName: "lanczos3",
    })
    if err := eng.Status(); err != nil {
        // bad filter name, or a contributor list could not be built
    }

Feed it source rows, and drain destination rows as they become ready:

    for y := 0; y < srcH; y++ {
        if err := eng.PutLine(srcRow(y)); err != nil {
            // ScanBufferFull, or PutLine called after a sticky error
        }
        for {
            row, err := eng.GetLine()
            if err == resample.ErrNotReady {
                break
            }
            if err == io.EOF {
                break
            }
            consume(row)
        }
    }

A single Engine resamples one channel. To resize a multi-channel image,
construct one Engine per channel and drive them in lockstep, sharing the
contributor lists built by the first engine's GetContribLists with the
others via Config.ContribX/Config.ContribY to avoid rebuilding identical
weight tables. The cmd/resample command in this module builds one Engine
per channel of a decoded image.Image and shares the first channel's
contributor lists with the other three; it runs the channels one after
another rather than in lockstep.
*/
package resample
