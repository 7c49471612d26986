package ziparch

import "github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"

// RawLFHFields is the exact 30-byte fixed part of a Local File Header,
// decoded field by field.
type RawLFHFields struct {
	VersionNeeded      uint16
	Flags              uint16
	CompressionMethod  uint16
	LastModTime        uint16
	LastModDate        uint16
	CRC32              uint32
	CompressedSize     uint32
	UncompressedSize   uint32
	FilenameLength     uint16
	ExtraLength        uint16
}

// ParsedLFH is one Local File Header found during the signature sweep,
// with its filename decoded per the UTF-8 flag (bit 11) or CP437.
type ParsedLFH struct {
	Offset      int64
	Raw         RawLFHFields
	FilenameRaw []byte
	Filename    string
	Extra       []byte
	DataOffset  int64
}

// parseLFH decodes the LFH at off in buf. Any short read or bad length is
// reported, and the caller is expected to drop the signature silently
// rather than treat this as fatal.
func parseLFH(buf []byte, off int64) (*ParsedLFH, error) {
	o := int(off)
	if o < 0 || o+lfhFixedSize > len(buf) {
		return nil, &archcodec.ErrShortRead{Offset: o, Width: lfhFixedSize, Len: len(buf)}
	}
	fixed := buf[o : o+lfhFixedSize]

	raw := RawLFHFields{}
	var err error
	if raw.VersionNeeded, err = archcodec.ReadU16LE(fixed, 4); err != nil {
		return nil, err
	}
	if raw.Flags, err = archcodec.ReadU16LE(fixed, 6); err != nil {
		return nil, err
	}
	if raw.CompressionMethod, err = archcodec.ReadU16LE(fixed, 8); err != nil {
		return nil, err
	}
	if raw.LastModTime, err = archcodec.ReadU16LE(fixed, 10); err != nil {
		return nil, err
	}
	if raw.LastModDate, err = archcodec.ReadU16LE(fixed, 12); err != nil {
		return nil, err
	}
	if raw.CRC32, err = archcodec.ReadU32LE(fixed, 14); err != nil {
		return nil, err
	}
	if raw.CompressedSize, err = archcodec.ReadU32LE(fixed, 18); err != nil {
		return nil, err
	}
	if raw.UncompressedSize, err = archcodec.ReadU32LE(fixed, 22); err != nil {
		return nil, err
	}
	if raw.FilenameLength, err = archcodec.ReadU16LE(fixed, 26); err != nil {
		return nil, err
	}
	if raw.ExtraLength, err = archcodec.ReadU16LE(fixed, 28); err != nil {
		return nil, err
	}

	nameStart := o + lfhFixedSize
	nameEnd := nameStart + int(raw.FilenameLength)
	extraEnd := nameEnd + int(raw.ExtraLength)
	if extraEnd > len(buf) {
		return nil, &archcodec.ErrShortRead{Offset: nameStart, Width: int(raw.FilenameLength) + int(raw.ExtraLength), Len: len(buf)}
	}

	nameRaw := append([]byte(nil), buf[nameStart:nameEnd]...)
	extra := append([]byte(nil), buf[nameEnd:extraEnd]...)

	return &ParsedLFH{
		Offset:      off,
		Raw:         raw,
		FilenameRaw: nameRaw,
		Filename:    decodeFilename(nameRaw, raw.Flags),
		Extra:       extra,
		DataOffset:  int64(extraEnd),
	}, nil
}
