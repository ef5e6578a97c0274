package xtc

import (
	"image"

	"github.com/xteink/goxtc/internal/xtc"
)

// Container is a parsed, read-only view over a container file.
type Container struct {
	c *xtc.Container
}

// PageInfo is one parsed index-table entry.
type PageInfo = xtc.PageInfo

// ParseContainer validates a container image and exposes its index for
// random access.
func ParseContainer(data []byte) (*Container, error) {
	c, err := xtc.ParseContainer(data)
	if err != nil {
		return nil, err
	}
	return &Container{c: c}, nil
}

// Version returns the container format version.
func (c *Container) Version() uint16 { return c.c.Version }

// ReadDirection returns the stored reading direction.
func (c *Container) ReadDirection() uint8 { return c.c.ReadDirection }

// CurrentPage returns the device resume position.
func (c *Container) CurrentPage() uint32 { return c.c.CurrentPage }

// Metadata returns the metadata block, or nil when absent.
func (c *Container) Metadata() *Metadata { return c.c.Metadata }

// Chapters returns the chapter table, empty when absent.
func (c *Container) Chapters() []Chapter { return c.c.Chapters }

// PageCount returns the number of indexed pages.
func (c *Container) PageCount() int { return c.c.PageCount() }

// Pages returns the parsed index table in page order.
func (c *Container) Pages() []PageInfo { return c.c.Pages }

// Page returns the encoded blob for the given 0-based page index.
func (c *Container) Page(i int) ([]byte, error) { return c.c.Page(i) }

// DecodePage decodes page i back to an 8-bit grayscale image. Monochrome
// pages decode to the exact 0/255 matrix; grayscale pages expand their
// quantization levels through the uniform 0/85/170/255 scale.
func (c *Container) DecodePage(i int) (*image.Gray, error) {
	blob, err := c.Page(i)
	if err != nil {
		return nil, err
	}
	hdr, err := xtc.ParseBlobHeader(blob)
	if err != nil {
		return nil, err
	}
	if hdr.IsGray() {
		levels, w, h, err := xtc.DecodeGray(blob)
		if err != nil {
			return nil, err
		}
		return xtc.GrayLevelImage(levels, w, h), nil
	}
	return xtc.DecodeMono(blob)
}
