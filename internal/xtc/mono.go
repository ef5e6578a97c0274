package xtc

import (
	"crypto/md5"
	"fmt"
	"image"
)

// DefaultMonoThreshold biases binarization toward a white background rather
// than the arithmetic midpoint, favoring a paper-white appearance over pure
// value fidelity.
const DefaultMonoThreshold = 168

// EncodeMono encodes a single-channel page into a 1-bit monochrome blob.
// Each pixel becomes 1 when its value is >= threshold, 0 otherwise. Pixels
// are packed eight per byte, row-major, most-significant-bit first: the
// leftmost pixel of a group occupies bit 7. Rows are ceil(width/8) bytes
// with the unused low-order bits of a trailing byte left zero. The header
// checksum is the first 8 bytes of the MD5 digest of the packed payload,
// used by the device for integrity checking, not for security.
func EncodeMono(page *image.Gray, threshold uint8) ([]byte, error) {
	w := page.Rect.Dx()
	h := page.Rect.Dy()
	if err := checkPageSize(w, h); err != nil {
		return nil, err
	}

	rowBytes := (w + 7) / 8
	payload := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		src := page.Pix[y*page.Stride : y*page.Stride+w]
		row := payload[y*rowBytes:]
		for x, v := range src {
			if v >= threshold {
				row[x/8] |= 1 << (7 - uint(x%8))
			}
		}
	}

	digest := md5.Sum(payload)
	var checksum [8]byte
	copy(checksum[:], digest[:8])
	return putBlobHeader(magicMono, uint16(w), uint16(h), checksum, payload), nil
}

// DecodeMono reconstructs the two-valued page from a monochrome blob. Set
// bits decode to 255, clear bits to 0, so decoding the encoding of a page
// yields exactly the thresholded input. The payload checksum is verified.
func DecodeMono(blob []byte) (*image.Gray, error) {
	hdr, err := ParseBlobHeader(blob)
	if err != nil {
		return nil, err
	}
	if !hdr.IsMono() {
		return nil, fmt.Errorf("%w: not a monochrome blob", ErrInconsistentBlobHeader)
	}
	w := int(hdr.Width)
	h := int(hdr.Height)
	rowBytes := (w + 7) / 8
	payload := blob[BlobHeaderSize:]
	if len(payload) != rowBytes*h {
		return nil, fmt.Errorf("%w: payload of %d bytes, want %d for %dx%d",
			ErrInconsistentBlobHeader, len(payload), rowBytes*h, w, h)
	}
	digest := md5.Sum(payload)
	for i, b := range hdr.Checksum {
		if digest[i] != b {
			return nil, fmt.Errorf("%w: payload checksum mismatch", ErrInconsistentBlobHeader)
		}
	}

	page := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := payload[y*rowBytes:]
		dst := page.Pix[y*page.Stride : y*page.Stride+w]
		for x := range dst {
			if row[x/8]>>(7-uint(x%8))&1 != 0 {
				dst[x] = 255
			}
		}
	}
	return page, nil
}
