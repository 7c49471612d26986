package ziparch

import "github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"

// Extra field header IDs the reader understands and the writer emits.
const (
	ExtraIDExtendedTimestamp = 0x5455
	ExtraIDInfoZipUnix       = 0x7855
	ExtraIDInfoZipUnixN      = 0x7875
	ExtraIDUnicodePath       = 0x7075
	ExtraIDNTFS              = 0x000A
)

// ExtraRecord is one type-length-value triple from an extra field blob.
type ExtraRecord struct {
	ID    uint16
	Data  []byte
}

// parseExtraRecords walks an extra field blob as a sequence of (id u16,
// size u16, data) triples. A malformed trailing
// record (short read) ends the walk without error, matching the reader's
// general "drop and continue" rule rather than rejecting the whole entry.
func parseExtraRecords(extra []byte) []ExtraRecord {
	var out []ExtraRecord
	off := 0
	for off+4 <= len(extra) {
		id, err := archcodec.ReadU16LE(extra, off)
		if err != nil {
			break
		}
		size, err := archcodec.ReadU16LE(extra, off+2)
		if err != nil {
			break
		}
		dataStart := off + 4
		dataEnd := dataStart + int(size)
		if dataEnd > len(extra) {
			break
		}
		out = append(out, ExtraRecord{ID: id, Data: extra[dataStart:dataEnd]})
		off = dataEnd
	}
	return out
}

// buildExtraBlob serializes records back into a TLV blob in order.
func buildExtraBlob(records []ExtraRecord) []byte {
	total := 0
	for _, r := range records {
		total += 4 + len(r.Data)
	}
	out := make([]byte, total)
	b := archcodec.WriteBuf(out)
	for _, r := range records {
		b.Uint16(r.ID)
		b.Uint16(uint16(len(r.Data)))
		b.Bytes(r.Data)
	}
	return out
}

// dropExtraID returns records with any record of the given ID removed,
// used when regenerating the Unix or Unicode Path extra fields so the
// prior field doesn't linger alongside the new one.
func dropExtraID(records []ExtraRecord, id uint16) []ExtraRecord {
	out := make([]ExtraRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// unicodePathFromExtra decodes the 0x7075 value: version(1) + nameCRC32(4)
// + utf8_path. Returns ("", false) if the field is absent or malformed.
func unicodePathFromExtra(extra []byte) (string, bool) {
	for _, r := range parseExtraRecords(extra) {
		if r.ID != ExtraIDUnicodePath {
			continue
		}
		if len(r.Data) < 5 {
			continue
		}
		return string(r.Data[5:]), true
	}
	return "", false
}

// buildUnicodePathField constructs the 0x7075 record. crc is computed over
// the main filename bytes, not the override path — the mismatch between
// the two is the detection primitive for the override attack.
func buildUnicodePathField(mainFilenameRaw []byte, unicodePath string) ExtraRecord {
	crc := archcodec.CRC32IEEE(mainFilenameRaw)
	data := make([]byte, 5+len(unicodePath))
	data[0] = 1 // version
	b := archcodec.WriteBuf(data[1:5])
	b.Uint32(crc)
	copy(data[5:], unicodePath)
	return ExtraRecord{ID: ExtraIDUnicodePath, Data: data}
}

// minimalLEBytes encodes v as the smallest little-endian byte string that
// represents it (at least one byte), capped at 255 bytes per the 0x7875
// field's one-byte size prefix. Mirrors zip_handler.py's
// `uid.to_bytes((uid.bit_length()+7)//8 or 1, "little")`.
func minimalLEBytes(v int64) []byte {
	u := uint64(v)
	n := 1
	for t := u >> 8; t != 0; t >>= 8 {
		n++
	}
	if n > 255 {
		n = 255
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = byte(u >> (8 * i))
	}
	return out
}

func leBytesToInt64(b []byte) int64 {
	var u uint64
	for i := len(b) - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	return int64(u)
}

// buildUnixN3Field constructs the 0x7875 Info-ZIP Unix type-3 field:
// version=1, uid_size, uid bytes (LE, minimal width), gid_size, gid bytes
// (LE, minimal width), matching zip_handler.py's variable-width encoding.
func buildUnixN3Field(uid, gid int64) ExtraRecord {
	uidBytes := minimalLEBytes(uid)
	gidBytes := minimalLEBytes(gid)
	data := make([]byte, 0, 2+len(uidBytes)+len(gidBytes))
	data = append(data, 1) // version
	data = append(data, byte(len(uidBytes)))
	data = append(data, uidBytes...)
	data = append(data, byte(len(gidBytes)))
	data = append(data, gidBytes...)
	return ExtraRecord{ID: ExtraIDInfoZipUnixN, Data: data}
}

// unixN3FromExtra decodes a 0x7875 field back into uid/gid, when present.
func unixN3FromExtra(extra []byte) (uid, gid int64, ok bool) {
	for _, r := range parseExtraRecords(extra) {
		if r.ID != ExtraIDInfoZipUnixN {
			continue
		}
		if len(r.Data) < 2 {
			continue
		}
		uidSize := int(r.Data[1])
		uidStart := 2
		uidEnd := uidStart + uidSize
		if uidEnd+1 > len(r.Data) {
			continue
		}
		gidSize := int(r.Data[uidEnd])
		gidStart := uidEnd + 1
		gidEnd := gidStart + gidSize
		if gidEnd > len(r.Data) {
			continue
		}
		return leBytesToInt64(r.Data[uidStart:uidEnd]), leBytesToInt64(r.Data[gidStart:gidEnd]), true
	}
	return 0, 0, false
}

// buildExtendedTimestampField constructs the 0x5455 field with just the
// modification-time flag set, matching zipserve's prepareEntry (which
// always emits flags=1, ModTime only).
func buildExtendedTimestampField(mtimeUnix uint32) ExtraRecord {
	data := make([]byte, 5)
	data[0] = 1 // flags: mtime present
	b := archcodec.WriteBuf(data[1:5])
	b.Uint32(mtimeUnix)
	return ExtraRecord{ID: ExtraIDExtendedTimestamp, Data: data}
}
