package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	xtc "github.com/xteink/goxtc/pkg/xtc"
)

func main() {
	var inputDir = flag.String("input", "", "Directory of page images (png/jpeg), encoded in name order")
	var outputFile = flag.String("output", "", "Output .xtc file (defaults to <input>.xtc)")
	var width = flag.Int("width", 480, "Canvas width in pixels")
	var height = flag.Int("height", 800, "Canvas height in pixels")
	var format = flag.String("format", "gray", "Page format: mono or gray")
	var threshold = flag.Int("threshold", 168, "Mono binarization threshold (0-255)")
	var thresholds = flag.String("thresholds", "85,170,255", "Gray quantization thresholds t1,t2,t3")
	var dither = flag.Bool("dither", true, "Enable error-diffusion dithering (gray format)")
	var strength = flag.Float64("strength", 0.8, "Dithering strength")
	var policy = flag.String("fit", "pad", "Fit policy: pad or crop")
	var filter = flag.String("filter", "box", "Resampling filter: box, nearest or catmullrom")
	var enhance = flag.Bool("enhance", false, "Apply contrast, sharpen and tone-clamp passes")
	var direction = flag.Int("direction", 0, "Read direction: 0=ltr, 1=rtl, 2=ttb")
	var title = flag.String("title", "", "Book title for the metadata block")
	var author = flag.String("author", "", "Book author for the metadata block")
	var workers = flag.Int("workers", 0, "Parallel page encoders (0 = one per CPU)")
	flag.Parse()

	if *inputDir == "" {
		log.Fatal("Input directory is required. Use -input flag.")
	}

	opts := xtc.DefaultOptions()
	opts.Width = *width
	opts.Height = *height
	opts.MonoThreshold = uint8(*threshold)
	opts.Dither = *dither
	opts.DitherStrength = float32(*strength)
	opts.ReadDirection = uint8(*direction)
	opts.Workers = *workers
	opts.Contrast = *enhance
	opts.Sharpen = *enhance
	opts.ToneClamp = *enhance

	switch *format {
	case "mono":
		opts.Format = xtc.FormatMono
	case "gray":
		opts.Format = xtc.FormatGray
	default:
		log.Fatalf("Unknown format %q, want mono or gray", *format)
	}
	switch *policy {
	case "pad":
		opts.Policy = xtc.FitPad
	case "crop":
		opts.Policy = xtc.FillCrop
	default:
		log.Fatalf("Unknown fit policy %q, want pad or crop", *policy)
	}
	switch *filter {
	case "box":
		opts.Filter = xtc.FilterBox
	case "nearest":
		opts.Filter = xtc.FilterNearest
	case "catmullrom":
		opts.Filter = xtc.FilterCatmullRom
	default:
		log.Fatalf("Unknown filter %q, want box, nearest or catmullrom", *filter)
	}

	gt, err := parseThresholds(*thresholds)
	if err != nil {
		log.Fatalf("Bad -thresholds: %v", err)
	}
	opts.GrayThresholds = gt

	if *title != "" || *author != "" {
		opts.Metadata = &xtc.Metadata{
			Title:      *title,
			Author:     *author,
			Language:   "en",
			CreateTime: uint64(time.Now().Unix()),
			CoverPage:  xtc.NoCoverPage,
		}
	}

	files, err := findPageImages(*inputDir)
	if err != nil {
		log.Fatalf("Failed to list input images: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("No page images found in %s", *inputDir)
	}
	fmt.Printf("Found %d page image(s) in %s\n", len(files), *inputDir)

	images := make([]image.Image, len(files))
	for i, path := range files {
		img, err := loadImage(path)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", path, err)
		}
		images[i] = img
	}

	enc, err := xtc.New(opts)
	if err != nil {
		log.Fatalf("Bad encoder options: %v", err)
	}

	data, err := enc.EncodeBook(images)
	if err != nil {
		log.Fatalf("Failed to encode book: %v", err)
	}

	output := *outputFile
	if output == "" {
		output = filepath.Clean(*inputDir) + ".xtc"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		log.Fatalf("Failed to write output file: %v", err)
	}
	fmt.Printf("Wrote %s: %d pages, %d bytes, %s format\n",
		output, len(images), len(data), *format)
}

// findPageImages lists the image files of a directory in name order, which
// is the page order.
func findPageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func parseThresholds(s string) ([3]uint8, error) {
	var t [3]uint8
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return t, fmt.Errorf("want three comma-separated values, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return t, fmt.Errorf("bad threshold %q", p)
		}
		t[i] = uint8(v)
	}
	return t, nil
}
