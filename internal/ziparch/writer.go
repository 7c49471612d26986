package ziparch

import (
	"time"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
)

// Permission defaults and DOS attribute bits.
const (
	defaultDirMode     = 0o775
	defaultSymlinkMode = 0o755
	defaultFileMode    = 0o644

	dosAttrDirectory = 0x10
)

// buildEntry is the fully-resolved, ready-to-serialize form of one ZIP
// member: everything writeLFH/writeCDH need, with content already
// decided (store only — every entry this tool authors uses
// compression method 0, mirroring the source's zipfile.ZipInfo default of
// ZIP_STORED, since nothing in zip_handler.py ever requests ZIP_DEFLATED).
type buildEntry struct {
	Name         string
	Content      []byte
	Mtime        time.Time
	ExternalAttr uint32
	Extra        []byte
	Comment      []byte
}

// SetPermissions encodes the 32-bit external_attr as
// (full_mode << 16) | dos_attr.
func SetPermissions(originalAttr *uint32, isDir, isSymlink, preserveType bool, attrs archcodec.EntryAttributes) uint32 {
	var mode uint32
	switch {
	case attrs.Mode != nil:
		mode = *attrs.Mode
	case isDir:
		mode = defaultDirMode
	case isSymlink:
		mode = defaultSymlinkMode
	default:
		mode = defaultFileMode
	}
	mode = archcodec.ApplySpecialBits(mode, attrs.SetUID, attrs.SetGID, attrs.Sticky)

	var fullMode uint32
	if preserveType && originalAttr != nil {
		typeBits := (*originalAttr >> 16) & archcodec.TypeMask
		fullMode = (mode & 0o7777) | typeBits
	} else {
		switch {
		case isSymlink:
			fullMode = (mode & 0o7777) | archcodec.TypeLink
		case isDir:
			fullMode = (mode & 0o7777) | archcodec.TypeDir
		default:
			fullMode = (mode & 0o7777) | archcodec.TypeReg
		}
	}

	var dosAttr uint32
	if isDir {
		dosAttr = dosAttrDirectory
	}

	return (fullMode << 16) | dosAttr
}

// buildExtraForAttrs assembles the extra-field blob for a fresh entry:
// an extended-timestamp field always, plus Unix uid/gid and Unicode Path
// overrides when requested, dropping any prior occurrence of those IDs
// from base first so stale 0x7875/0x7075 fields never linger.
func buildExtraForAttrs(base []byte, nameRaw []byte, mtime time.Time, attrs archcodec.EntryAttributes) []byte {
	records := parseExtraRecords(base)
	records = dropExtraID(records, ExtraIDExtendedTimestamp)
	records = append(records, buildExtendedTimestampField(uint32(mtime.Unix())))

	if attrs.UID != nil || attrs.GID != nil {
		uid, gid := int64(0), int64(0)
		if attrs.UID != nil {
			uid = *attrs.UID
		}
		if attrs.GID != nil {
			gid = *attrs.GID
		}
		records = dropExtraID(records, ExtraIDInfoZipUnixN)
		records = append(records, buildUnixN3Field(uid, gid))
	}

	if attrs.UnicodePathOverride != nil {
		records = dropExtraID(records, ExtraIDUnicodePath)
		records = append(records, buildUnicodePathField(nameRaw, *attrs.UnicodePathOverride))
	}

	return buildExtraBlob(records)
}

// writeLFH serializes the fixed 30-byte LFH plus name and extra, using
// the same write-cursor style as zipserve's writeHeader.
func writeLFH(name string, content []byte, mtime time.Time, extra []byte) []byte {
	nameBytes := []byte(name)
	crc := archcodec.CRC32IEEE(content)
	date, timeField := archcodec.TimeToDOS(mtime)

	out := make([]byte, lfhFixedSize+len(nameBytes)+len(extra))
	b := archcodec.WriteBuf(out)
	b.Uint32(0x04034b50)
	b.Uint16(20) // version needed
	flags := uint16(0)
	if isValidUTF8(name) {
		flags |= utf8FlagBit
	}
	b.Uint16(flags)
	b.Uint16(0) // compression: store
	b.Uint16(timeField)
	b.Uint16(date)
	b.Uint32(crc)
	b.Uint32(uint32(len(content)))
	b.Uint32(uint32(len(content)))
	b.Uint16(uint16(len(nameBytes)))
	b.Uint16(uint16(len(extra)))
	b.Bytes(nameBytes)
	b.Bytes(extra)
	return out
}

// writeCDH serializes the fixed 46-byte CDH plus name/extra/comment.
func writeCDH(name string, content []byte, mtime time.Time, externalAttr uint32, extra, comment []byte, lfhOffset uint32) []byte {
	nameBytes := []byte(name)
	crc := archcodec.CRC32IEEE(content)
	date, timeField := archcodec.TimeToDOS(mtime)

	out := make([]byte, cdhFixedSize+len(nameBytes)+len(extra)+len(comment))
	b := archcodec.WriteBuf(out)
	b.Uint32(0x02014b50)
	b.Uint16(0x0314) // version made by: unix (3) << 8 | 20
	b.Uint16(20)     // version needed
	flags := uint16(0)
	if isValidUTF8(name) {
		flags |= utf8FlagBit
	}
	b.Uint16(flags)
	b.Uint16(0) // compression: store
	b.Uint16(timeField)
	b.Uint16(date)
	b.Uint32(crc)
	b.Uint32(uint32(len(content)))
	b.Uint32(uint32(len(content)))
	b.Uint16(uint16(len(nameBytes)))
	b.Uint16(uint16(len(extra)))
	b.Uint16(uint16(len(comment)))
	b.Skip(4) // disk number start, internal attributes
	b.Uint32(externalAttr)
	b.Uint32(lfhOffset)
	b.Bytes(nameBytes)
	b.Bytes(extra)
	b.Bytes(comment)
	return out
}

// writeEOCD serializes the 22-byte fixed EOCD plus comment.
func writeEOCD(cdOffset, cdSize uint32, totalEntries uint16, comment []byte) []byte {
	out := make([]byte, eocdFixedSize+len(comment))
	b := archcodec.WriteBuf(out)
	b.Uint32(0x06054b50)
	b.Skip(4) // disk number, cd disk number
	b.Uint16(totalEntries)
	b.Uint16(totalEntries)
	b.Uint32(cdSize)
	b.Uint32(cdOffset)
	b.Uint16(uint16(len(comment)))
	b.Bytes(comment)
	return out
}

// serializeArchive lays out every entry's LFH immediately followed by its
// content, then the central directory, then the EOCD, keeping each CDH's
// lfh_offset in agreement with its LFH's actual offset and the EOCD's
// cd_offset/cd_size/total_entries in agreement with what was written.
func serializeArchive(entries []buildEntry, eocdComment []byte) []byte {
	var out []byte
	lfhOffsets := make([]uint32, len(entries))
	for i, e := range entries {
		lfhOffsets[i] = uint32(len(out))
		out = append(out, writeLFH(e.Name, e.Content, e.Mtime, e.Extra)...)
		out = append(out, e.Content...)
	}

	cdStart := len(out)
	for i, e := range entries {
		out = append(out, writeCDH(e.Name, e.Content, e.Mtime, e.ExternalAttr, e.Extra, e.Comment, lfhOffsets[i])...)
	}
	cdSize := len(out) - cdStart

	out = append(out, writeEOCD(uint32(cdStart), uint32(cdSize), uint16(len(entries)), eocdComment)...)
	return out
}
