package xtc

import "image"

// ditherReconstruction holds the value subtracted from the accumulated pixel
// when computing the diffused error for each quantized level. The uniform
// 0/85/170/255 scale keeps the error zero for inputs that already sit
// exactly on a level, consistent with the 85/170/255 thresholds.
var ditherReconstruction = [4]float32{0, 85, 170, 255}

// ditherLevels quantizes a page to 4 levels with Floyd-Steinberg error
// diffusion. Pixels are visited in row-major order over a float working
// copy. Each pixel's accumulated value is quantized with the same threshold
// rule as the flat path, and error*strength is spread to the not-yet-visited
// neighbors with weights 7/16 (right), 3/16 (below-left), 5/16 (below) and
// 1/16 (below-right). Weights falling outside the image are dropped, not
// redistributed, so a single-pixel page degenerates to flat quantization.
func ditherLevels(page *image.Gray, t [3]uint8, strength float32) []uint8 {
	w := page.Rect.Dx()
	h := page.Rect.Dy()

	working := make([]float32, w*h)
	for y := 0; y < h; y++ {
		src := page.Pix[y*page.Stride : y*page.Stride+w]
		dst := working[y*w:]
		for x, v := range src {
			dst[x] = float32(v)
		}
	}

	wRight := 7.0 / 16 * strength
	wBelowLeft := 3.0 / 16 * strength
	wBelow := 5.0 / 16 * strength
	wBelowRight := 1.0 / 16 * strength

	levels := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := working[y*w:]
		for x := 0; x < w; x++ {
			old := row[x]
			var level uint8
			switch {
			case old < float32(t[0]):
				level = 0
			case old < float32(t[1]):
				level = 1
			case old < float32(t[2]):
				level = 2
			default:
				level = 3
			}
			levels[y*w+x] = level
			err := old - ditherReconstruction[level]
			if x+1 < w {
				row[x+1] += err * wRight
			}
			if y+1 < h {
				below := working[(y+1)*w:]
				if x > 0 {
					below[x-1] += err * wBelowLeft
				}
				below[x] += err * wBelow
				if x+1 < w {
					below[x+1] += err * wBelowRight
				}
			}
		}
	}
	return levels
}
