package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	xtc "github.com/xteink/goxtc/pkg/xtc"
)

func main() {
	var inputFile = flag.String("input", "", "Input .xtc file")
	var extractDir = flag.String("extract", "", "Optional directory to extract decoded pages as PNG")
	flag.Parse()

	if *inputFile == "" {
		log.Fatal("Input file is required. Use -input flag.")
	}

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}

	// ParseContainer walks the whole index and verifies every blob header,
	// so a successful parse already validates the file structure.
	c, err := xtc.ParseContainer(data)
	if err != nil {
		log.Fatalf("Invalid container: %v", err)
	}

	fmt.Printf("%s: %d bytes\n", *inputFile, len(data))
	fmt.Printf("  version:        %#04x\n", c.Version())
	fmt.Printf("  pages:          %d\n", c.PageCount())
	fmt.Printf("  read direction: %s\n", directionName(c.ReadDirection()))
	fmt.Printf("  current page:   %d\n", c.CurrentPage())

	if md := c.Metadata(); md != nil {
		fmt.Printf("  metadata:\n")
		fmt.Printf("    title:     %q\n", md.Title)
		fmt.Printf("    author:    %q\n", md.Author)
		fmt.Printf("    publisher: %q\n", md.Publisher)
		fmt.Printf("    language:  %q\n", md.Language)
		if md.CoverPage != xtc.NoCoverPage {
			fmt.Printf("    cover:     page %d\n", md.CoverPage)
		}
	}
	for i, ch := range c.Chapters() {
		fmt.Printf("  chapter %d: %q pages %d-%d\n", i, ch.Name, ch.StartPage, ch.EndPage)
	}
	for i, p := range c.Pages() {
		fmt.Printf("  page %3d: offset %8d, %6d bytes, %dx%d\n",
			i, p.Offset, p.Length, p.Width, p.Height)
	}

	if *extractDir == "" {
		return
	}
	if err := os.MkdirAll(*extractDir, 0o755); err != nil {
		log.Fatalf("Failed to create extract directory: %v", err)
	}
	for i := 0; i < c.PageCount(); i++ {
		img, err := c.DecodePage(i)
		if err != nil {
			log.Fatalf("Failed to decode page %d: %v", i, err)
		}
		path := filepath.Join(*extractDir, fmt.Sprintf("page-%04d.png", i))
		f, err := os.Create(path)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", path, err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			log.Fatalf("Failed to encode %s: %v", path, err)
		}
		f.Close()
	}
	fmt.Printf("Extracted %d page(s) to %s\n", c.PageCount(), *extractDir)
}

func directionName(d uint8) string {
	switch d {
	case xtc.ReadLeftToRight:
		return "left-to-right"
	case xtc.ReadRightToLeft:
		return "right-to-left"
	case xtc.ReadTopToBottom:
		return "top-to-bottom"
	default:
		return fmt.Sprintf("unknown (%d)", d)
	}
}
