package xtc

import (
	"encoding/binary"
	"fmt"
)

// Page blob magic tags, stored as the first four bytes of every encoded page.
var (
	magicMono = [4]byte{'X', 'T', 'G', 0}
	magicGray = [4]byte{'X', 'T', 'H', 0}
)

// BlobHeaderSize is the fixed size of the header preceding every page
// payload. Field order, all little-endian: magic (4), width (u16),
// height (u16), color mode (u8, reserved 0), compression (u8, reserved 0),
// payload length (u32), checksum (8).
const BlobHeaderSize = 22

// BlobHeader is the parsed fixed-size header of a page blob. A blob is
// self-describing: width and height are recoverable from bytes 4-8 without
// external context.
type BlobHeader struct {
	Magic       [4]byte
	Width       uint16
	Height      uint16
	ColorMode   uint8
	Compression uint8
	DataSize    uint32
	Checksum    [8]byte
}

// IsMono reports whether the header carries the 1-bit monochrome magic tag.
func (h *BlobHeader) IsMono() bool { return h.Magic == magicMono }

// IsGray reports whether the header carries the 4-level grayscale magic tag.
func (h *BlobHeader) IsGray() bool { return h.Magic == magicGray }

// ParseBlobHeader validates and decodes the header of an encoded page blob.
// It checks the magic tag, the dimension fields, and that the declared
// payload length matches the blob size.
func ParseBlobHeader(blob []byte) (*BlobHeader, error) {
	if len(blob) < BlobHeaderSize {
		return nil, fmt.Errorf("%w: blob of %d bytes is shorter than the %d byte header",
			ErrInconsistentBlobHeader, len(blob), BlobHeaderSize)
	}
	var h BlobHeader
	copy(h.Magic[:], blob[:4])
	if !h.IsMono() && !h.IsGray() {
		return nil, fmt.Errorf("%w: unknown magic %q", ErrInconsistentBlobHeader, blob[:4])
	}
	h.Width = binary.LittleEndian.Uint16(blob[4:6])
	h.Height = binary.LittleEndian.Uint16(blob[6:8])
	h.ColorMode = blob[8]
	h.Compression = blob[9]
	h.DataSize = binary.LittleEndian.Uint32(blob[10:14])
	copy(h.Checksum[:], blob[14:22])
	if h.Width == 0 || h.Height == 0 {
		return nil, fmt.Errorf("%w: zero dimension %dx%d", ErrInconsistentBlobHeader, h.Width, h.Height)
	}
	if int(h.DataSize) != len(blob)-BlobHeaderSize {
		return nil, fmt.Errorf("%w: declared payload of %d bytes, blob carries %d",
			ErrInconsistentBlobHeader, h.DataSize, len(blob)-BlobHeaderSize)
	}
	return &h, nil
}

// putBlobHeader serializes a header in front of payload and returns the
// complete blob. len(payload) must fit the u32 payload length field.
func putBlobHeader(magic [4]byte, width, height uint16, checksum [8]byte, payload []byte) []byte {
	blob := make([]byte, BlobHeaderSize+len(payload))
	copy(blob[:4], magic[:])
	binary.LittleEndian.PutUint16(blob[4:6], width)
	binary.LittleEndian.PutUint16(blob[6:8], height)
	blob[8] = 0 // color mode, reserved
	blob[9] = 0 // compression, reserved
	binary.LittleEndian.PutUint32(blob[10:14], uint32(len(payload)))
	copy(blob[14:22], checksum[:])
	copy(blob[BlobHeaderSize:], payload)
	return blob
}

// checkPageSize guards the dimension fields shared by both page codecs.
func checkPageSize(w, h int) error {
	if w <= 0 || h <= 0 || w > 0xFFFF || h > 0xFFFF {
		return fmt.Errorf("%w: page %dx%d does not fit the blob header", ErrInvalidDimensions, w, h)
	}
	return nil
}
