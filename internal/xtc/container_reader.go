package xtc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// PageInfo is one parsed index-table entry.
type PageInfo struct {
	Offset uint64
	Length uint32
	Width  uint16
	Height uint16
}

// Container is a parsed, read-only view over a container image. Page
// payloads are sliced out of the original buffer, not copied.
type Container struct {
	Version       uint16
	ReadDirection uint8
	CurrentPage   uint32
	Metadata      *Metadata
	Chapters      []Chapter
	Pages         []PageInfo

	data []byte
}

// ParseContainer validates a container image and exposes its index for
// random access. Every index entry is checked against the file bounds and
// against the width/height embedded in its blob's own header, enforcing the
// read-back contract: entry i's byte range decodes as a valid page blob
// whose dimensions equal the index entry's.
func ParseContainer(data []byte) (*Container, error) {
	if len(data) < ContainerHeaderSize {
		return nil, fmt.Errorf("xtc: container of %d bytes is shorter than the %d byte header",
			len(data), ContainerHeaderSize)
	}
	if !bytes.Equal(data[0:4], magicContainer[:]) {
		return nil, fmt.Errorf("xtc: bad container magic %q", data[0:4])
	}
	c := &Container{data: data}
	c.Version = binary.LittleEndian.Uint16(data[4:6])
	if c.Version != ContainerVersion {
		return nil, fmt.Errorf("xtc: unsupported container version %#04x", c.Version)
	}
	pageCount := int(binary.LittleEndian.Uint16(data[6:8]))
	c.ReadDirection = data[8]
	hasMetadata := data[9] != 0
	hasChapters := data[11] != 0
	c.CurrentPage = binary.LittleEndian.Uint32(data[12:16])
	metadataOffset := binary.LittleEndian.Uint64(data[16:24])
	indexOffset := binary.LittleEndian.Uint64(data[24:32])
	dataOffset := binary.LittleEndian.Uint64(data[32:40])

	if indexOffset != ContainerHeaderSize {
		return nil, fmt.Errorf("xtc: index offset %d, want %d", indexOffset, ContainerHeaderSize)
	}
	indexEnd := indexOffset + uint64(pageCount*IndexEntrySize)
	if indexEnd > uint64(len(data)) || dataOffset > uint64(len(data)) || dataOffset < indexEnd {
		return nil, fmt.Errorf("xtc: truncated container: %d pages, %d bytes", pageCount, len(data))
	}

	extOffset := indexEnd
	if hasMetadata {
		if metadataOffset != extOffset || extOffset+MetadataBlockSize > dataOffset {
			return nil, fmt.Errorf("xtc: metadata offset %d out of place", metadataOffset)
		}
		c.Metadata = parseMetadataBlock(data[extOffset : extOffset+MetadataBlockSize])
		extOffset += MetadataBlockSize
	}
	if hasChapters {
		span := dataOffset - extOffset
		if span%ChapterEntrySize != 0 {
			return nil, fmt.Errorf("xtc: chapter table of %d bytes is not a whole number of entries", span)
		}
		for off := extOffset; off < dataOffset; off += ChapterEntrySize {
			c.Chapters = append(c.Chapters, parseChapterEntry(data[off:off+ChapterEntrySize]))
		}
	} else if extOffset != dataOffset {
		return nil, fmt.Errorf("xtc: %d unexpected bytes between index and data", dataOffset-extOffset)
	}

	c.Pages = make([]PageInfo, pageCount)
	next := dataOffset
	for i := range c.Pages {
		entry := data[indexOffset+uint64(i*IndexEntrySize):]
		p := PageInfo{
			Offset: binary.LittleEndian.Uint64(entry[0:8]),
			Length: binary.LittleEndian.Uint32(entry[8:12]),
			Width:  binary.LittleEndian.Uint16(entry[12:14]),
			Height: binary.LittleEndian.Uint16(entry[14:16]),
		}
		if p.Offset != next {
			return nil, fmt.Errorf("xtc: page %d at offset %d, want %d", i, p.Offset, next)
		}
		end := p.Offset + uint64(p.Length)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("xtc: page %d overruns the container", i)
		}
		hdr, err := ParseBlobHeader(data[p.Offset:end])
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		if hdr.Width != p.Width || hdr.Height != p.Height {
			return nil, fmt.Errorf("%w: page %d index says %dx%d, blob says %dx%d",
				ErrInconsistentBlobHeader, i, p.Width, p.Height, hdr.Width, hdr.Height)
		}
		c.Pages[i] = p
		next = end
	}
	if next != uint64(len(data)) {
		return nil, fmt.Errorf("xtc: %d trailing bytes after the last page", uint64(len(data))-next)
	}
	return c, nil
}

// PageCount returns the number of indexed pages.
func (c *Container) PageCount() int { return len(c.Pages) }

// Page returns the encoded blob for the given 0-based page index.
func (c *Container) Page(i int) ([]byte, error) {
	if i < 0 || i >= len(c.Pages) {
		return nil, fmt.Errorf("xtc: page index %d out of range [0,%d)", i, len(c.Pages))
	}
	p := c.Pages[i]
	return c.data[p.Offset : p.Offset+uint64(p.Length)], nil
}

func parseMetadataBlock(block []byte) *Metadata {
	return &Metadata{
		Title:      trimPadded(block[0:128]),
		Author:     trimPadded(block[128:192]),
		Publisher:  trimPadded(block[192:224]),
		Language:   trimPadded(block[224:232]),
		CreateTime: binary.LittleEndian.Uint64(block[232:240]),
		CoverPage:  binary.LittleEndian.Uint16(block[240:242]),
	}
}

func parseChapterEntry(entry []byte) Chapter {
	return Chapter{
		Name:      trimPadded(entry[0:80]),
		StartPage: binary.LittleEndian.Uint16(entry[80:82]),
		EndPage:   binary.LittleEndian.Uint16(entry[82:84]),
	}
}

func trimPadded(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
