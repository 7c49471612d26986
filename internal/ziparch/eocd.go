package ziparch

import "github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"

// ParsedEOCD is the End of Central Directory record.
type ParsedEOCD struct {
	Offset       int64
	DiskNumber   uint16
	CDDisk       uint16
	DiskEntries  uint16
	TotalEntries uint16
	CDSize       uint32
	CDOffset     uint32
	Comment      []byte
}

func parseEOCD(buf []byte, off int64) (*ParsedEOCD, error) {
	o := int(off)
	if o < 0 || o+eocdFixedSize > len(buf) {
		return nil, &archcodec.ErrShortRead{Offset: o, Width: eocdFixedSize, Len: len(buf)}
	}
	fixed := buf[o : o+eocdFixedSize]

	e := &ParsedEOCD{Offset: off}
	var err error
	if e.DiskNumber, err = archcodec.ReadU16LE(fixed, 4); err != nil {
		return nil, err
	}
	if e.CDDisk, err = archcodec.ReadU16LE(fixed, 6); err != nil {
		return nil, err
	}
	if e.DiskEntries, err = archcodec.ReadU16LE(fixed, 8); err != nil {
		return nil, err
	}
	if e.TotalEntries, err = archcodec.ReadU16LE(fixed, 10); err != nil {
		return nil, err
	}
	if e.CDSize, err = archcodec.ReadU32LE(fixed, 12); err != nil {
		return nil, err
	}
	if e.CDOffset, err = archcodec.ReadU32LE(fixed, 16); err != nil {
		return nil, err
	}
	commentLen, err := archcodec.ReadU16LE(fixed, 20)
	if err != nil {
		return nil, err
	}

	commentStart := o + eocdFixedSize
	commentEnd := commentStart + int(commentLen)
	if commentEnd > len(buf) {
		return nil, &archcodec.ErrShortRead{Offset: commentStart, Width: int(commentLen), Len: len(buf)}
	}
	e.Comment = append([]byte(nil), buf[commentStart:commentEnd]...)
	return e, nil
}
