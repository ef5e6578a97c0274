package xtc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"
)

func patternGray(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*31 + y*17) % 256)})
		}
	}
	return img
}

func TestEncodeMonoSinglePartialByte(t *testing.T) {
	// Pixels [200, 50] at threshold 168: only the leftmost pixel crosses,
	// landing in bit 7 of a single row byte.
	page := image.NewGray(image.Rect(0, 0, 2, 1))
	copy(page.Pix, []uint8{200, 50})

	blob, err := EncodeMono(page, 168)
	if err != nil {
		t.Fatalf("EncodeMono failed: %v", err)
	}
	if len(blob) != BlobHeaderSize+1 {
		t.Fatalf("Expected %d byte blob, got %d", BlobHeaderSize+1, len(blob))
	}
	if !bytes.Equal(blob[:4], []byte("XTG\x00")) {
		t.Errorf("Bad magic %q", blob[:4])
	}
	if got := blob[BlobHeaderSize]; got != 0x80 {
		t.Errorf("Payload byte = %#02x, want 0x80", got)
	}
}

func TestEncodeMonoHeaderFields(t *testing.T) {
	page := uniformGray(480, 800, 255)
	blob, err := EncodeMono(page, DefaultMonoThreshold)
	if err != nil {
		t.Fatalf("EncodeMono failed: %v", err)
	}
	// Width and height are recoverable from bytes 4-8 alone.
	if w := binary.LittleEndian.Uint16(blob[4:6]); w != 480 {
		t.Errorf("Header width = %d, want 480", w)
	}
	if h := binary.LittleEndian.Uint16(blob[6:8]); h != 800 {
		t.Errorf("Header height = %d, want 800", h)
	}
	if blob[8] != 0 || blob[9] != 0 {
		t.Errorf("Reserved fields = %d/%d, want 0/0", blob[8], blob[9])
	}
	wantSize := uint32(480 / 8 * 800)
	if got := binary.LittleEndian.Uint32(blob[10:14]); got != wantSize {
		t.Errorf("Header payload size = %d, want %d", got, wantSize)
	}
}

func TestEncodeMonoRowPadding(t *testing.T) {
	// Width 10 needs 2 bytes per row; the 6 spare bits of the trailing
	// byte stay zero.
	page := uniformGray(10, 2, 255)
	blob, err := EncodeMono(page, 128)
	if err != nil {
		t.Fatalf("EncodeMono failed: %v", err)
	}
	payload := blob[BlobHeaderSize:]
	want := []byte{0xFF, 0xC0, 0xFF, 0xC0}
	if !bytes.Equal(payload, want) {
		t.Errorf("Payload = %x, want %x", payload, want)
	}
}

func TestMonoRoundTrip(t *testing.T) {
	page := patternGray(37, 23) // width deliberately not a multiple of 8
	const threshold = 128

	blob, err := EncodeMono(page, threshold)
	if err != nil {
		t.Fatalf("EncodeMono failed: %v", err)
	}
	decoded, err := DecodeMono(blob)
	if err != nil {
		t.Fatalf("DecodeMono failed: %v", err)
	}
	if decoded.Rect.Dx() != 37 || decoded.Rect.Dy() != 23 {
		t.Fatalf("Decoded %dx%d, want 37x23", decoded.Rect.Dx(), decoded.Rect.Dy())
	}
	for y := 0; y < 23; y++ {
		for x := 0; x < 37; x++ {
			want := uint8(0)
			if page.GrayAt(x, y).Y >= threshold {
				want = 255
			}
			if got := decoded.GrayAt(x, y).Y; got != want {
				t.Fatalf("Pixel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestEncodeMonoIdempotent(t *testing.T) {
	page := patternGray(64, 64)
	a, err := EncodeMono(page, DefaultMonoThreshold)
	if err != nil {
		t.Fatalf("EncodeMono failed: %v", err)
	}
	b, err := EncodeMono(page, DefaultMonoThreshold)
	if err != nil {
		t.Fatalf("EncodeMono failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("Encoding the same page twice produced different blobs")
	}
}

func TestDecodeMonoChecksumMismatch(t *testing.T) {
	blob, err := EncodeMono(uniformGray(16, 16, 255), 128)
	if err != nil {
		t.Fatalf("EncodeMono failed: %v", err)
	}
	blob[len(blob)-1] ^= 0xFF
	if _, err := DecodeMono(blob); !errors.Is(err, ErrInconsistentBlobHeader) {
		t.Errorf("Expected ErrInconsistentBlobHeader, got %v", err)
	}
}

func TestEncodeMonoInvalidDimensions(t *testing.T) {
	page := image.NewGray(image.Rect(0, 0, 0, 0))
	if _, err := EncodeMono(page, 128); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}
}
