package xtc

import (
	"fmt"
	"image"
	"runtime"
	"sync"
)

// Format selects the page codec used for every page of one container.
type Format int

const (
	// FormatMono encodes 1-bit monochrome pages.
	FormatMono Format = iota
	// FormatGray encodes 4-level grayscale pages.
	FormatGray
)

func (f Format) String() string {
	switch f {
	case FormatMono:
		return "mono"
	case FormatGray:
		return "gray"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// EncodeOptions configures the full normalize-encode-assemble pipeline.
type EncodeOptions struct {
	Canvas    Canvas
	Format    Format
	Normalize NormalizeOptions
	// MonoThreshold applies when Format is FormatMono.
	MonoThreshold uint8
	// Gray applies when Format is FormatGray.
	Gray      GrayOptions
	Container ContainerOptions
	// Workers caps the number of pages encoded concurrently; values < 1
	// mean one worker per CPU. Pages have no cross-page data dependency, so
	// they are encoded in parallel and collected by page index.
	Workers int
}

// DefaultEncodeOptions returns the stock 480x800 reader configuration:
// grayscale pages with dithering, fit-pad onto a paper-white background.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Canvas: Canvas{Width: 480, Height: 800},
		Format: FormatGray,
		Normalize: NormalizeOptions{
			Policy:     FitPad,
			Filter:     FilterBox,
			Background: 255,
		},
		MonoThreshold: DefaultMonoThreshold,
		Gray:          DefaultGrayOptions(),
	}
}

// EncodePage normalizes and encodes a single source image.
func EncodePage(src image.Image, opts EncodeOptions) ([]byte, error) {
	page, err := Normalize(src, opts.Canvas, opts.Normalize)
	if err != nil {
		return nil, err
	}
	switch opts.Format {
	case FormatGray:
		return EncodeGray(page, opts.Gray)
	default:
		return EncodeMono(page, opts.MonoThreshold)
	}
}

// EncodePages encodes an ordered list of source images into page blobs,
// preserving input order regardless of completion order. The first error
// aborts the batch: a partially encoded set would desynchronize page
// ordering and index offsets, so no page is ever skipped.
func EncodePages(images []image.Image, opts EncodeOptions) ([][]byte, error) {
	if len(images) == 0 {
		return nil, ErrEmptyPageSet
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(images) {
		workers = len(images)
	}

	blobs := make([][]byte, len(images))
	errs := make([]error, len(images))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				blobs[i], errs[i] = EncodePage(images[i], opts)
			}
		}()
	}
	for i := range images {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
	}
	return blobs, nil
}

// EncodeBook runs the whole pipeline: every image is normalized and encoded,
// then the blobs are assembled into one container in input order.
func EncodeBook(images []image.Image, opts EncodeOptions) ([]byte, error) {
	blobs, err := EncodePages(images, opts)
	if err != nil {
		return nil, err
	}
	return BuildContainer(blobs, opts.Container)
}
