package xtc

import (
	"encoding/binary"
	"fmt"
	"image"
)

// DefaultGrayThresholds is the stock quantization triple for the 4-level
// grayscale codec.
var DefaultGrayThresholds = [3]uint8{85, 170, 255}

// DefaultDitherStrength scales the diffused quantization error.
const DefaultDitherStrength = 0.8

// GrayOptions configures the 4-level grayscale codec.
type GrayOptions struct {
	// Thresholds must be strictly increasing. A pixel's level is the number
	// of thresholds it equals or exceeds: v < t1 is level 0, t1 <= v < t2 is
	// level 1, t2 <= v < t3 is level 2, v >= t3 is level 3.
	Thresholds [3]uint8
	// Dither enables Floyd-Steinberg error diffusion instead of flat
	// thresholding.
	Dither bool
	// Strength scales the diffused error; 0.8 matches the device's own
	// tooling. Only meaningful when Dither is set.
	Strength float32
}

// DefaultGrayOptions returns the codec configuration used by the device's
// own conversion tooling: dithering on at strength 0.8, thresholds
// 85/170/255.
func DefaultGrayOptions() GrayOptions {
	return GrayOptions{
		Thresholds: DefaultGrayThresholds,
		Dither:     true,
		Strength:   DefaultDitherStrength,
	}
}

// levelRemap matches the physical grayscale LUT of the display: the two
// middle levels are swapped relative to their natural binary order. The
// table is its own inverse.
var levelRemap = [4]uint8{0, 2, 1, 3}

// EncodeGray encodes a single-channel page into a 4-level grayscale blob.
//
// Quantization produces one 2-bit level per pixel, by flat thresholding or
// error diffusion. Packing then reproduces the display's native layout:
// every level is remapped through levelRemap, inverted (3-x), and split into
// a high and a low bitplane. Planes are packed column-major scanning columns
// right to left; within a column, rows form bands of 8 vertical pixels
// packed one byte per plane with the topmost pixel in the most significant
// bit. A partial trailing band still emits a full byte with the spare bits
// zero. The payload is plane1 followed by plane2 in the same enumeration
// order, and the header checksum is the additive sum of all payload bytes.
// That sum is deliberately weaker than the monochrome codec's MD5 prefix;
// the device expects it, so it must not be upgraded without a format
// version bump.
func EncodeGray(page *image.Gray, opts GrayOptions) ([]byte, error) {
	w := page.Rect.Dx()
	h := page.Rect.Dy()
	if err := checkPageSize(w, h); err != nil {
		return nil, err
	}
	t := opts.Thresholds
	if t[0] >= t[1] || t[1] >= t[2] {
		return nil, fmt.Errorf("%w: got %d/%d/%d", ErrInvalidThresholds, t[0], t[1], t[2])
	}

	var levels []uint8
	if opts.Dither {
		levels = ditherLevels(page, t, opts.Strength)
	} else {
		levels = quantizeLevels(page, t)
	}

	payload := packBitplanes(levels, w, h)
	var sum uint64
	for _, b := range payload {
		sum += uint64(b)
	}
	var checksum [8]byte
	binary.LittleEndian.PutUint64(checksum[:], sum)
	return putBlobHeader(magicGray, uint16(w), uint16(h), checksum, payload), nil
}

// quantizeLevels maps each pixel to its flat-threshold level.
func quantizeLevels(page *image.Gray, t [3]uint8) []uint8 {
	w := page.Rect.Dx()
	h := page.Rect.Dy()
	levels := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		src := page.Pix[y*page.Stride : y*page.Stride+w]
		dst := levels[y*w:]
		for x, v := range src {
			dst[x] = quantize(v, t)
		}
	}
	return levels
}

func quantize(v uint8, t [3]uint8) uint8 {
	switch {
	case v < t[0]:
		return 0
	case v < t[1]:
		return 1
	case v < t[2]:
		return 2
	default:
		return 3
	}
}

// packBitplanes serializes a level matrix into the two concatenated
// bitplanes described on EncodeGray.
func packBitplanes(levels []uint8, w, h int) []byte {
	bands := (h + 7) / 8
	planeSize := w * bands
	payload := make([]byte, 2*planeSize)
	idx := 0
	for x := w - 1; x >= 0; x-- {
		for y0 := 0; y0 < h; y0 += 8 {
			var hi, lo byte
			for i := 0; i < 8 && y0+i < h; i++ {
				final := 3 - levelRemap[levels[(y0+i)*w+x]]
				hi |= (final >> 1 & 1) << (7 - uint(i))
				lo |= (final & 1) << (7 - uint(i))
			}
			payload[idx] = hi
			payload[planeSize+idx] = lo
			idx++
		}
	}
	return payload
}

// DecodeGray reconstructs the quantization level matrix (values 0..3, row
// major) from a grayscale blob, undoing the bitplane split, the inversion,
// and the level remap. The additive checksum is verified.
func DecodeGray(blob []byte) (levels []uint8, width, height int, err error) {
	hdr, err := ParseBlobHeader(blob)
	if err != nil {
		return nil, 0, 0, err
	}
	if !hdr.IsGray() {
		return nil, 0, 0, fmt.Errorf("%w: not a grayscale blob", ErrInconsistentBlobHeader)
	}
	w := int(hdr.Width)
	h := int(hdr.Height)
	bands := (h + 7) / 8
	planeSize := w * bands
	payload := blob[BlobHeaderSize:]
	if len(payload) != 2*planeSize {
		return nil, 0, 0, fmt.Errorf("%w: payload of %d bytes, want %d for %dx%d",
			ErrInconsistentBlobHeader, len(payload), 2*planeSize, w, h)
	}
	var sum uint64
	for _, b := range payload {
		sum += uint64(b)
	}
	var want [8]byte
	binary.LittleEndian.PutUint64(want[:], sum)
	if want != hdr.Checksum {
		return nil, 0, 0, fmt.Errorf("%w: payload checksum mismatch", ErrInconsistentBlobHeader)
	}

	levels = make([]uint8, w*h)
	idx := 0
	for x := w - 1; x >= 0; x-- {
		for y0 := 0; y0 < h; y0 += 8 {
			hi := payload[idx]
			lo := payload[planeSize+idx]
			idx++
			for i := 0; i < 8 && y0+i < h; i++ {
				final := (hi>>(7-uint(i))&1)<<1 | lo>>(7-uint(i))&1
				levels[(y0+i)*w+x] = levelRemap[3-final]
			}
		}
	}
	return levels, w, h, nil
}

// GrayLevelImage expands a level matrix to an 8-bit image using the uniform
// reconstruction scale 0/85/170/255. Useful for previewing decoded pages.
func GrayLevelImage(levels []uint8, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		dst := img.Pix[y*img.Stride : y*img.Stride+w]
		for x := range dst {
			dst[x] = levels[y*w+x] * 85
		}
	}
	return img
}
