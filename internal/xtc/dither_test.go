package xtc

import "testing"

func TestDitherUniformOnLevelValue(t *testing.T) {
	// 85 sits exactly on reconstruction level 1, so the error term is zero
	// and nothing diffuses.
	page := uniformGray(16, 16, 85)
	levels := ditherLevels(page, DefaultGrayThresholds, DefaultDitherStrength)
	for i, l := range levels {
		if l != 1 {
			t.Fatalf("Level at index %d = %d, want 1", i, l)
		}
	}
}

func TestDitherZeroStrengthMatchesFlat(t *testing.T) {
	page := patternGray(24, 16)
	dithered := ditherLevels(page, DefaultGrayThresholds, 0)
	flat := quantizeLevels(page, DefaultGrayThresholds)
	for i := range flat {
		if dithered[i] != flat[i] {
			t.Fatalf("Level at index %d = %d, want %d", i, dithered[i], flat[i])
		}
	}
}

func TestDitherSinglePixel(t *testing.T) {
	// No neighbors to receive error; must degenerate to plain quantization.
	page := uniformGray(1, 1, 200)
	levels := ditherLevels(page, DefaultGrayThresholds, DefaultDitherStrength)
	if len(levels) != 1 || levels[0] != 2 {
		t.Fatalf("Levels = %v, want [2]", levels)
	}
}

func TestDitherMidGrayMixesLevels(t *testing.T) {
	// Uniform 128 quantizes flat to level 1 everywhere; diffusion must push
	// some accumulated pixels over the 170 threshold to simulate the
	// intermediate tone.
	page := uniformGray(16, 16, 128)
	levels := ditherLevels(page, DefaultGrayThresholds, DefaultDitherStrength)
	counts := [4]int{}
	for _, l := range levels {
		counts[l]++
	}
	if counts[0] != 0 {
		t.Errorf("Unexpected level 0 pixels: %d", counts[0])
	}
	if counts[1] == 0 || counts[2] == 0 {
		t.Errorf("Expected a mix of levels 1 and 2, got counts %v", counts)
	}
}

func TestDitherAllWhiteStaysWhite(t *testing.T) {
	page := uniformGray(8, 8, 255)
	levels := ditherLevels(page, DefaultGrayThresholds, DefaultDitherStrength)
	for i, l := range levels {
		if l != 3 {
			t.Fatalf("Level at index %d = %d, want 3", i, l)
		}
	}
}
