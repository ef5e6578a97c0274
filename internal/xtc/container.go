package xtc

import (
	"encoding/binary"
	"fmt"
)

// Container format constants.
const (
	ContainerHeaderSize = 48
	ContainerVersion    = 0x0100
	IndexEntrySize      = 16
	MetadataBlockSize   = 256
	ChapterEntrySize    = 96

	// NoCoverPage marks a metadata block without a cover page.
	NoCoverPage = 0xFFFF
)

var magicContainer = [4]byte{'X', 'T', 'C', 0}

// Read directions stored in the container header.
const (
	ReadLeftToRight uint8 = 0
	ReadRightToLeft uint8 = 1
	ReadTopToBottom uint8 = 2
)

// Metadata is the optional 256-byte book metadata block. Strings are
// NUL-padded UTF-8, truncated at the field size.
type Metadata struct {
	Title     string // 128 bytes
	Author    string // 64 bytes
	Publisher string // 32 bytes
	Language  string // 8 bytes
	// CreateTime is seconds since the Unix epoch.
	CreateTime uint64
	// CoverPage is a 0-based page index, NoCoverPage when absent.
	CoverPage uint16
}

// Chapter names a contiguous page range. Pages are 0-based and EndPage is
// inclusive.
type Chapter struct {
	Name      string // 80 bytes
	StartPage uint16
	EndPage   uint16
}

// ContainerOptions configures container assembly beyond the page blobs
// themselves.
type ContainerOptions struct {
	ReadDirection uint8
	// CurrentPage seeds the device's resume position.
	CurrentPage uint32
	// Metadata, when non-nil, emits the metadata extension block.
	Metadata *Metadata
	// Chapters, when non-empty, emits the chapter table.
	Chapters []Chapter
}

// BuildContainer concatenates an ordered list of encoded page blobs into one
// container image.
//
// Layout: a fixed 48-byte header, a 16-byte index entry per page, the
// optional metadata block, the optional chapter table, then every blob
// back to back with no gaps. indexOffset is always 48 and dataOffset is
// derived deterministically from the page count plus the extension blocks
// present. Each index entry records the blob's absolute byte offset, its
// length, and the width/height read back from the blob's own header as a
// cheap integrity cross-check. Construction is append-only; the returned
// buffer is treated as read-only by every consumer.
func BuildContainer(blobs [][]byte, opts ContainerOptions) ([]byte, error) {
	if len(blobs) == 0 {
		return nil, ErrEmptyPageSet
	}
	if len(blobs) > 0xFFFF {
		return nil, fmt.Errorf("xtc: %d pages exceed the u16 page count field", len(blobs))
	}
	headers := make([]*BlobHeader, len(blobs))
	total := 0
	for i, blob := range blobs {
		hdr, err := ParseBlobHeader(blob)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		headers[i] = hdr
		total += len(blob)
	}

	pageCount := len(blobs)
	indexOffset := uint64(ContainerHeaderSize)
	dataOffset := indexOffset + uint64(pageCount*IndexEntrySize)

	var metadataOffset uint64
	if opts.Metadata != nil {
		metadataOffset = dataOffset
		dataOffset += MetadataBlockSize
	}
	// The chapter table has no header offset of its own; readers derive it
	// from the flags (after the metadata block, or straight after the index).
	if len(opts.Chapters) > 0 {
		dataOffset += uint64(len(opts.Chapters) * ChapterEntrySize)
	}

	out := make([]byte, 0, int(dataOffset)+total)
	out = appendContainerHeader(out, uint16(pageCount), opts, metadataOffset, indexOffset, dataOffset)

	offset := dataOffset
	for i, blob := range blobs {
		var entry [IndexEntrySize]byte
		binary.LittleEndian.PutUint64(entry[0:8], offset)
		binary.LittleEndian.PutUint32(entry[8:12], uint32(len(blob)))
		binary.LittleEndian.PutUint16(entry[12:14], headers[i].Width)
		binary.LittleEndian.PutUint16(entry[14:16], headers[i].Height)
		out = append(out, entry[:]...)
		offset += uint64(len(blob))
	}

	if opts.Metadata != nil {
		out = appendMetadataBlock(out, opts.Metadata, uint16(len(opts.Chapters)))
	}
	for _, ch := range opts.Chapters {
		out = appendChapterEntry(out, ch)
	}
	for _, blob := range blobs {
		out = append(out, blob...)
	}
	return out, nil
}

func appendContainerHeader(out []byte, pageCount uint16, opts ContainerOptions, metadataOffset, indexOffset, dataOffset uint64) []byte {
	var hdr [ContainerHeaderSize]byte
	copy(hdr[0:4], magicContainer[:])
	binary.LittleEndian.PutUint16(hdr[4:6], ContainerVersion)
	binary.LittleEndian.PutUint16(hdr[6:8], pageCount)
	hdr[8] = opts.ReadDirection
	if opts.Metadata != nil {
		hdr[9] = 1
	}
	hdr[10] = 0 // thumbnails, reserved
	if len(opts.Chapters) > 0 {
		hdr[11] = 1
	}
	binary.LittleEndian.PutUint32(hdr[12:16], opts.CurrentPage)
	binary.LittleEndian.PutUint64(hdr[16:24], metadataOffset)
	binary.LittleEndian.PutUint64(hdr[24:32], indexOffset)
	binary.LittleEndian.PutUint64(hdr[32:40], dataOffset)
	binary.LittleEndian.PutUint64(hdr[40:48], 0) // thumbnail offset, reserved
	return append(out, hdr[:]...)
}

func appendMetadataBlock(out []byte, md *Metadata, chapterCount uint16) []byte {
	var block [MetadataBlockSize]byte
	putPadded(block[0:128], md.Title)
	putPadded(block[128:192], md.Author)
	putPadded(block[192:224], md.Publisher)
	putPadded(block[224:232], md.Language)
	binary.LittleEndian.PutUint64(block[232:240], md.CreateTime)
	binary.LittleEndian.PutUint16(block[240:242], md.CoverPage)
	binary.LittleEndian.PutUint16(block[242:244], chapterCount)
	// bytes 244-255 reserved
	return append(out, block[:]...)
}

func appendChapterEntry(out []byte, ch Chapter) []byte {
	var entry [ChapterEntrySize]byte
	putPadded(entry[0:80], ch.Name)
	binary.LittleEndian.PutUint16(entry[80:82], ch.StartPage)
	binary.LittleEndian.PutUint16(entry[82:84], ch.EndPage)
	// bytes 84-95 reserved
	return append(out, entry[:]...)
}

// putPadded copies a NUL-padded, truncated UTF-8 string into a fixed field.
func putPadded(dst []byte, s string) {
	copy(dst, s)
}
