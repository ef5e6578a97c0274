package xtc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"testing"
)

func TestQuantizeBoundaries(t *testing.T) {
	tests := []struct {
		value uint8
		want  uint8
	}{
		{0, 0}, {84, 0},
		{85, 1}, {128, 1}, {169, 1},
		{170, 2}, {254, 2},
		{255, 3},
	}
	for _, test := range tests {
		if got := quantize(test.value, DefaultGrayThresholds); got != test.want {
			t.Errorf("quantize(%d) = %d, want %d", test.value, got, test.want)
		}
	}
}

func TestEncodeGrayInvalidThresholds(t *testing.T) {
	page := uniformGray(8, 8, 128)
	for _, thresholds := range [][3]uint8{
		{170, 85, 255},
		{85, 85, 255},
		{85, 170, 170},
	} {
		_, err := EncodeGray(page, GrayOptions{Thresholds: thresholds})
		if !errors.Is(err, ErrInvalidThresholds) {
			t.Errorf("Thresholds %v: expected ErrInvalidThresholds, got %v", thresholds, err)
		}
	}
}

func TestGrayBitplanePacking(t *testing.T) {
	// 2x2 page with one pixel per level:
	//   0 1
	//   2 3
	// Remap {0,2,1,3} then invert gives finals 3,1,2,0. Columns are scanned
	// right to left, one band byte per plane, topmost pixel in bit 7.
	page := image.NewGray(image.Rect(0, 0, 2, 2))
	copy(page.Pix, []uint8{0, 85, 170, 255})

	blob, err := EncodeGray(page, GrayOptions{Thresholds: DefaultGrayThresholds})
	if err != nil {
		t.Fatalf("EncodeGray failed: %v", err)
	}
	if !bytes.Equal(blob[:4], []byte("XTH\x00")) {
		t.Errorf("Bad magic %q", blob[:4])
	}
	payload := blob[BlobHeaderSize:]
	// Right column finals top-to-bottom: 1, 0. Left column: 3, 2.
	want := []byte{
		0x00, 0xC0, // plane 1 (high bits)
		0x80, 0x80, // plane 2 (low bits)
	}
	if !bytes.Equal(payload, want) {
		t.Fatalf("Payload = %x, want %x", payload, want)
	}

	// Header checksum is the additive sum of the payload bytes.
	var sum uint64
	for _, b := range payload {
		sum += uint64(b)
	}
	if got := binary.LittleEndian.Uint64(blob[14:22]); got != sum {
		t.Errorf("Checksum = %d, want %d", got, sum)
	}
}

func TestGrayPartialBandPadding(t *testing.T) {
	// Height 3 still emits a full band byte; bits beyond the image are 0.
	// All-black pixels are level 0, remapped+inverted to final 3 (both
	// plane bits set).
	page := uniformGray(1, 3, 0)
	blob, err := EncodeGray(page, GrayOptions{Thresholds: DefaultGrayThresholds})
	if err != nil {
		t.Fatalf("EncodeGray failed: %v", err)
	}
	payload := blob[BlobHeaderSize:]
	want := []byte{0xE0, 0xE0}
	if !bytes.Equal(payload, want) {
		t.Errorf("Payload = %x, want %x", payload, want)
	}
}

func TestLevelRemapIsInvolution(t *testing.T) {
	for l := uint8(0); l < 4; l++ {
		if got := levelRemap[levelRemap[l]]; got != l {
			t.Errorf("levelRemap applied twice maps %d to %d", l, got)
		}
	}
}

func TestGrayRoundTrip(t *testing.T) {
	// Odd width and a partial trailing band exercise the packing edges.
	page := patternGray(13, 11)
	blob, err := EncodeGray(page, GrayOptions{Thresholds: DefaultGrayThresholds})
	if err != nil {
		t.Fatalf("EncodeGray failed: %v", err)
	}
	levels, w, h, err := DecodeGray(blob)
	if err != nil {
		t.Fatalf("DecodeGray failed: %v", err)
	}
	if w != 13 || h != 11 {
		t.Fatalf("Decoded %dx%d, want 13x11", w, h)
	}
	want := quantizeLevels(page, DefaultGrayThresholds)
	for i := range want {
		if levels[i] > 3 {
			t.Fatalf("Level %d at index %d out of range", levels[i], i)
		}
		if levels[i] != want[i] {
			t.Fatalf("Level at index %d = %d, want %d", i, levels[i], want[i])
		}
	}
}

func TestGrayRoundTripDithered(t *testing.T) {
	page := patternGray(32, 20)
	opts := DefaultGrayOptions()
	blob, err := EncodeGray(page, opts)
	if err != nil {
		t.Fatalf("EncodeGray failed: %v", err)
	}
	levels, w, h, err := DecodeGray(blob)
	if err != nil {
		t.Fatalf("DecodeGray failed: %v", err)
	}
	want := ditherLevels(page, opts.Thresholds, opts.Strength)
	if w*h != len(want) {
		t.Fatalf("Decoded %d levels, want %d", w*h, len(want))
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("Level at index %d = %d, want %d", i, levels[i], want[i])
		}
	}
}

func TestEncodeGrayIdempotent(t *testing.T) {
	page := patternGray(48, 32)
	opts := DefaultGrayOptions()
	a, err := EncodeGray(page, opts)
	if err != nil {
		t.Fatalf("EncodeGray failed: %v", err)
	}
	b, err := EncodeGray(page, opts)
	if err != nil {
		t.Fatalf("EncodeGray failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("Encoding the same page twice produced different blobs")
	}
}

func TestDecodeGrayChecksumMismatch(t *testing.T) {
	blob, err := EncodeGray(uniformGray(16, 16, 200), GrayOptions{Thresholds: DefaultGrayThresholds})
	if err != nil {
		t.Fatalf("EncodeGray failed: %v", err)
	}
	blob[len(blob)-1] ^= 0x01
	if _, _, _, err := DecodeGray(blob); !errors.Is(err, ErrInconsistentBlobHeader) {
		t.Errorf("Expected ErrInconsistentBlobHeader, got %v", err)
	}
}

func TestDecodeGrayRejectsMonoBlob(t *testing.T) {
	blob, err := EncodeMono(uniformGray(8, 8, 255), 128)
	if err != nil {
		t.Fatalf("EncodeMono failed: %v", err)
	}
	if _, _, _, err := DecodeGray(blob); !errors.Is(err, ErrInconsistentBlobHeader) {
		t.Errorf("Expected ErrInconsistentBlobHeader, got %v", err)
	}
}
