package ziparch

import "github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"

// RawCDHFields is the exact 46-byte fixed part of a Central Directory
// Header.
type RawCDHFields struct {
	VersionMadeBy      uint16
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
	CommentLength      uint16
	DiskStart          uint16
	InternalAttr       uint16
	ExternalAttr       uint32
	LFHOffset          uint32
}

// ParsedCDH is one Central Directory Header found during the signature
// sweep, whether or not it is reachable from the EOCD's central directory
// (a CDH hidden inside the EOCD comment parses the same way).
type ParsedCDH struct {
	Offset      int64
	Raw         RawCDHFields
	FilenameRaw []byte
	Filename    string
	Extra       []byte
	Comment     []byte
}

func parseCDH(buf []byte, off int64) (*ParsedCDH, error) {
	o := int(off)
	if o < 0 || o+cdhFixedSize > len(buf) {
		return nil, &archcodec.ErrShortRead{Offset: o, Width: cdhFixedSize, Len: len(buf)}
	}
	fixed := buf[o : o+cdhFixedSize]

	raw := RawCDHFields{}
	var err error
	if raw.VersionMadeBy, err = archcodec.ReadU16LE(fixed, 4); err != nil {
		return nil, err
	}
	if raw.VersionNeeded, err = archcodec.ReadU16LE(fixed, 6); err != nil {
		return nil, err
	}
	if raw.Flags, err = archcodec.ReadU16LE(fixed, 8); err != nil {
		return nil, err
	}
	if raw.CompressionMethod, err = archcodec.ReadU16LE(fixed, 10); err != nil {
		return nil, err
	}
	if raw.LastModTime, err = archcodec.ReadU16LE(fixed, 12); err != nil {
		return nil, err
	}
	if raw.LastModDate, err = archcodec.ReadU16LE(fixed, 14); err != nil {
		return nil, err
	}
	if raw.CRC32, err = archcodec.ReadU32LE(fixed, 16); err != nil {
		return nil, err
	}
	if raw.CompressedSize, err = archcodec.ReadU32LE(fixed, 20); err != nil {
		return nil, err
	}
	if raw.UncompressedSize, err = archcodec.ReadU32LE(fixed, 24); err != nil {
		return nil, err
	}
	if raw.FilenameLength, err = archcodec.ReadU16LE(fixed, 28); err != nil {
		return nil, err
	}
	if raw.ExtraLength, err = archcodec.ReadU16LE(fixed, 30); err != nil {
		return nil, err
	}
	if raw.CommentLength, err = archcodec.ReadU16LE(fixed, 32); err != nil {
		return nil, err
	}
	if raw.DiskStart, err = archcodec.ReadU16LE(fixed, 34); err != nil {
		return nil, err
	}
	if raw.InternalAttr, err = archcodec.ReadU16LE(fixed, 36); err != nil {
		return nil, err
	}
	if raw.ExternalAttr, err = archcodec.ReadU32LE(fixed, 38); err != nil {
		return nil, err
	}
	if raw.LFHOffset, err = archcodec.ReadU32LE(fixed, 42); err != nil {
		return nil, err
	}

	nameStart := o + cdhFixedSize
	nameEnd := nameStart + int(raw.FilenameLength)
	extraEnd := nameEnd + int(raw.ExtraLength)
	commentEnd := extraEnd + int(raw.CommentLength)
	if commentEnd > len(buf) {
		return nil, &archcodec.ErrShortRead{Offset: nameStart, Width: commentEnd - nameStart, Len: len(buf)}
	}

	nameRaw := append([]byte(nil), buf[nameStart:nameEnd]...)
	extra := append([]byte(nil), buf[nameEnd:extraEnd]...)
	comment := append([]byte(nil), buf[extraEnd:commentEnd]...)

	return &ParsedCDH{
		Offset:      off,
		Raw:         raw,
		FilenameRaw: nameRaw,
		Filename:    decodeFilename(nameRaw, raw.Flags),
		Extra:       extra,
		Comment:     comment,
	}, nil
}
