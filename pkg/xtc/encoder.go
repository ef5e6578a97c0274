// Package xtc converts rendered page images into the XTG/XTH page formats
// and bundles them into seekable XTC containers for 4-level e-paper readers.
package xtc

import (
	"image"

	"github.com/xteink/goxtc/internal/xtc"
)

// Format selects the page codec, constant for all pages of one container.
type Format = xtc.Format

const (
	// FormatMono encodes 1 bit per pixel monochrome pages.
	FormatMono = xtc.FormatMono
	// FormatGray encodes 2 bit per pixel 4-level grayscale pages.
	FormatGray = xtc.FormatGray
)

// FitPolicy selects how source content is mapped onto the device canvas.
type FitPolicy = xtc.FitPolicy

const (
	// FitPad preserves the full content, centered over a background fill.
	FitPad = xtc.FitPad
	// FillCrop covers the canvas and center-crops the overflow.
	FillCrop = xtc.FillCrop
)

// Filter selects the resampling kernel used when content is scaled.
type Filter = xtc.Filter

const (
	// FilterBox is the fast flat kernel suited to rendered text.
	FilterBox = xtc.FilterBox
	// FilterNearest is nearest-neighbor sampling.
	FilterNearest = xtc.FilterNearest
	// FilterCatmullRom is a higher-order kernel for photographic content.
	FilterCatmullRom = xtc.FilterCatmullRom
)

// Read directions stored in the container header.
const (
	ReadLeftToRight = xtc.ReadLeftToRight
	ReadRightToLeft = xtc.ReadRightToLeft
	ReadTopToBottom = xtc.ReadTopToBottom
)

// NoCoverPage marks a metadata block without a cover page.
const NoCoverPage = xtc.NoCoverPage

// Metadata is the optional book metadata block.
type Metadata = xtc.Metadata

// Chapter names a contiguous page range, 0-based and end-inclusive.
type Chapter = xtc.Chapter

// Errors reported by the codec; match with errors.Is.
var (
	ErrInvalidDimensions      = xtc.ErrInvalidDimensions
	ErrInvalidThresholds      = xtc.ErrInvalidThresholds
	ErrEmptyPageSet           = xtc.ErrEmptyPageSet
	ErrInconsistentBlobHeader = xtc.ErrInconsistentBlobHeader
)

// Options configures an Encoder. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// Width and Height are the device canvas in pixels.
	Width  int
	Height int
	// Format selects the page codec.
	Format Format
	// Policy and Filter control normalization.
	Policy FitPolicy
	Filter Filter
	// Background fills fit-pad margins (255 is paper white).
	Background uint8
	// Contrast, Sharpen and ToneClamp enable the optional enhancement
	// passes that keep dithering noise away from text edges.
	Contrast  bool
	Sharpen   bool
	ToneClamp bool
	// MonoThreshold binarizes FormatMono pages.
	MonoThreshold uint8
	// GrayThresholds must be strictly increasing.
	GrayThresholds [3]uint8
	// Dither enables Floyd-Steinberg error diffusion at DitherStrength for
	// FormatGray pages.
	Dither         bool
	DitherStrength float32
	// ReadDirection, CurrentPage, Metadata and Chapters are carried into
	// the container header.
	ReadDirection uint8
	CurrentPage   uint32
	Metadata      *Metadata
	Chapters      []Chapter
	// Workers caps concurrent page encodes; < 1 means one per CPU.
	Workers int
}

// DefaultOptions returns the stock 480x800 reader configuration: dithered
// grayscale pages, fit-pad onto paper white.
func DefaultOptions() Options {
	return Options{
		Width:          480,
		Height:         800,
		Format:         FormatGray,
		Policy:         FitPad,
		Filter:         FilterBox,
		Background:     255,
		MonoThreshold:  xtc.DefaultMonoThreshold,
		GrayThresholds: xtc.DefaultGrayThresholds,
		Dither:         true,
		DitherStrength: xtc.DefaultDitherStrength,
	}
}

// Encoder runs the normalize-encode-assemble pipeline for one configuration.
type Encoder struct {
	opts xtc.EncodeOptions
}

// New validates the options and creates an encoder.
func New(opts Options) (*Encoder, error) {
	internal := xtc.EncodeOptions{
		Canvas: xtc.Canvas{Width: opts.Width, Height: opts.Height},
		Format: opts.Format,
		Normalize: xtc.NormalizeOptions{
			Policy:     opts.Policy,
			Filter:     opts.Filter,
			Background: opts.Background,
			Enhance: xtc.Enhance{
				Contrast:  opts.Contrast,
				Sharpen:   opts.Sharpen,
				ToneClamp: opts.ToneClamp,
			},
		},
		MonoThreshold: opts.MonoThreshold,
		Gray: xtc.GrayOptions{
			Thresholds: opts.GrayThresholds,
			Dither:     opts.Dither,
			Strength:   opts.DitherStrength,
		},
		Container: xtc.ContainerOptions{
			ReadDirection: opts.ReadDirection,
			CurrentPage:   opts.CurrentPage,
			Metadata:      opts.Metadata,
			Chapters:      opts.Chapters,
		},
		Workers: opts.Workers,
	}
	if internal.Canvas.Width <= 0 || internal.Canvas.Height <= 0 {
		return nil, ErrInvalidDimensions
	}
	t := internal.Gray.Thresholds
	if internal.Format == FormatGray && (t[0] >= t[1] || t[1] >= t[2]) {
		return nil, ErrInvalidThresholds
	}
	return &Encoder{opts: internal}, nil
}

// EncodePage normalizes and encodes one source image, returning the
// intermediate page blob.
func (e *Encoder) EncodePage(src image.Image) ([]byte, error) {
	return xtc.EncodePage(src, e.opts)
}

// EncodePages encodes an ordered image list into page blobs, preserving
// input order.
func (e *Encoder) EncodePages(images []image.Image) ([][]byte, error) {
	return xtc.EncodePages(images, e.opts)
}

// EncodeBook encodes every image and assembles the container file.
func (e *Encoder) EncodeBook(images []image.Image) ([]byte, error) {
	return xtc.EncodeBook(images, e.opts)
}

// BuildContainer assembles already-encoded page blobs using this encoder's
// container options.
func (e *Encoder) BuildContainer(blobs [][]byte) ([]byte, error) {
	return xtc.BuildContainer(blobs, e.opts.Container)
}
