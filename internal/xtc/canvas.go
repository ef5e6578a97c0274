package xtc

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Canvas is the fixed target page size of the device. Every encoded page in
// one container shares the same canvas.
type Canvas struct {
	Width  int
	Height int
}

// FitPolicy selects how source content is mapped onto the canvas.
type FitPolicy int

const (
	// FitPad scales content down to fit inside the canvas, never up, and
	// centers it over a background fill. Full content is preserved; uniform
	// margins may remain.
	FitPad FitPolicy = iota
	// FillCrop scales content (up or down) until it covers the canvas and
	// center-crops the overflow on the longer axis.
	FillCrop
)

// Filter selects the resampling kernel used when content is scaled. The
// choice affects only visual quality, never the format contract.
type Filter int

const (
	// FilterBox is a fast flat kernel suited to rendered text pages.
	FilterBox Filter = iota
	// FilterNearest is nearest-neighbor sampling.
	FilterNearest
	// FilterCatmullRom is a higher-order kernel for photographic content.
	FilterCatmullRom
)

func (f Filter) interpolator() draw.Interpolator {
	switch f {
	case FilterNearest:
		return draw.NearestNeighbor
	case FilterCatmullRom:
		return draw.CatmullRom
	default:
		return draw.ApproxBiLinear
	}
}

// Enhance selects the optional tone passes applied after normalization,
// intended to keep dithering noise away from fine text edges.
type Enhance struct {
	// Contrast scales each pixel's deviation from mid-gray by
	// contrastFactor, bounded to [0,255].
	Contrast bool
	// Sharpen applies one unsharp-style convolution pass.
	Sharpen bool
	// ToneClamp forces values below toneLow to black and above toneHigh to
	// white, leaving the band in between untouched.
	ToneClamp bool
}

const (
	contrastFactor = 1.2
	toneLow        = 100
	toneHigh       = 200
)

// NormalizeOptions configures the page normalizer.
type NormalizeOptions struct {
	Policy FitPolicy
	Filter Filter
	// Background fills the margins left by FitPad. Paper white for books.
	Background uint8
	Enhance    Enhance
}

// Normalize fits an arbitrary-size source image onto the canvas and returns
// a canonical single-channel image of exactly canvas width x height. The
// transform is pure: the source is never mutated.
func Normalize(src image.Image, canvas Canvas, opts NormalizeOptions) (*image.Gray, error) {
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return nil, fmt.Errorf("%w: canvas %dx%d", ErrInvalidDimensions, canvas.Width, canvas.Height)
	}
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("%w: source %dx%d", ErrInvalidDimensions, srcW, srcH)
	}

	dst := image.NewGray(image.Rect(0, 0, canvas.Width, canvas.Height))

	switch opts.Policy {
	case FillCrop:
		scale := float64(canvas.Width) / float64(srcW)
		if s := float64(canvas.Height) / float64(srcH); s > scale {
			scale = s
		}
		scaledW := iround(float64(srcW) * scale)
		scaledH := iround(float64(srcH) * scale)
		// Overflow hangs off the dst bounds symmetrically; the scaler clips.
		ox := (scaledW - canvas.Width) / 2
		oy := (scaledH - canvas.Height) / 2
		dr := image.Rect(-ox, -oy, -ox+scaledW, -oy+scaledH)
		opts.Filter.interpolator().Scale(dst, dr, src, sb, draw.Src, nil)
	default: // FitPad
		for i := range dst.Pix {
			dst.Pix[i] = opts.Background
		}
		scale := float64(canvas.Width) / float64(srcW)
		if s := float64(canvas.Height) / float64(srcH); s < scale {
			scale = s
		}
		if scale > 1 {
			// Content smaller than the canvas is pasted at native size;
			// upscaling rendered text only blurs it.
			scale = 1
		}
		scaledW := iround(float64(srcW) * scale)
		scaledH := iround(float64(srcH) * scale)
		ox := (canvas.Width - scaledW) / 2
		oy := (canvas.Height - scaledH) / 2
		dr := image.Rect(ox, oy, ox+scaledW, oy+scaledH)
		if scaledW == srcW && scaledH == srcH {
			draw.Draw(dst, dr, src, sb.Min, draw.Src)
		} else {
			opts.Filter.interpolator().Scale(dst, dr, src, sb, draw.Src, nil)
		}
	}

	if opts.Enhance.Contrast {
		applyContrast(dst)
	}
	if opts.Enhance.Sharpen {
		applySharpen(dst)
	}
	if opts.Enhance.ToneClamp {
		applyToneClamp(dst)
	}
	return dst, nil
}

func iround(v float64) int {
	return int(v + 0.5)
}

func applyContrast(img *image.Gray) {
	for i, v := range img.Pix {
		img.Pix[i] = clampU8(128 + (float64(v)-128)*contrastFactor)
	}
}

// applySharpen runs a single 3x3 unsharp kernel pass. Border pixels are left
// unchanged.
func applySharpen(img *image.Gray) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if w < 3 || h < 3 {
		return
	}
	// -2 everywhere, 32 center, divisor 16.
	src := make([]uint8, len(img.Pix))
	copy(src, img.Pix)
	stride := img.Stride
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			sum := 32 * int(src[y*stride+x])
			sum -= 2 * int(src[(y-1)*stride+x-1])
			sum -= 2 * int(src[(y-1)*stride+x])
			sum -= 2 * int(src[(y-1)*stride+x+1])
			sum -= 2 * int(src[y*stride+x-1])
			sum -= 2 * int(src[y*stride+x+1])
			sum -= 2 * int(src[(y+1)*stride+x-1])
			sum -= 2 * int(src[(y+1)*stride+x])
			sum -= 2 * int(src[(y+1)*stride+x+1])
			img.Pix[y*stride+x] = clampU8(float64(sum) / 16)
		}
	}
}

func applyToneClamp(img *image.Gray) {
	for i, v := range img.Pix {
		switch {
		case v < toneLow:
			img.Pix[i] = 0
		case v > toneHigh:
			img.Pix[i] = 255
		}
	}
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
