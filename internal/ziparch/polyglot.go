package ziparch

import (
	"os"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// maxEOCDSearch bounds the backward EOCD scan: an EOCD's comment can be at
// most 65535 bytes, plus the 22-byte fixed record itself.
const maxEOCDSearch = 65535 + eocdFixedSize

// Polyglot prepends prefix to archivePath and patches every stored offset
// (each CDH's LFH offset, the EOCD's CD offset) so the shifted file is
// still a valid ZIP.
//
// The EOCD record is copied verbatim except for its 4-byte cd_offset field
// at fixed offset 16, so its comment is never touched; any CDH hidden
// inside that comment (as the orphan
// fixture generator constructs) survives byte-for-byte, which is
// intentional — load-bearing for fuzzing workflows that chain orphan
// fixtures with polyglot prefixes, not an oversight.
func Polyglot(archivePath string, prefix []byte) error {
	buf, err := os.ReadFile(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			buf = serializeArchive(nil, nil)
		} else {
			return archerr.New(archerr.FormatInvalid, "ziparch.Polyglot", archivePath, err)
		}
	}

	eocdOffset, err := findEOCDBackward(buf)
	if err != nil {
		return err
	}
	cdOffset, err := archcodec.ReadU32LE(buf, eocdOffset+16)
	if err != nil {
		return archerr.New(archerr.FormatInvalid, "ziparch.Polyglot", archivePath, err)
	}

	shift := uint32(len(prefix))

	out := make([]byte, 0, len(prefix)+len(buf))
	out = append(out, prefix...)
	out = append(out, buf[:cdOffset]...)

	patchedCD, err := patchCentralDirectory(buf, int(cdOffset), eocdOffset, shift)
	if err != nil {
		return err
	}
	out = append(out, patchedCD...)

	patchedEOCD := append([]byte(nil), buf[eocdOffset:]...)
	b := archcodec.WriteBuf(patchedEOCD[16:20])
	b.Uint32(cdOffset + shift)
	out = append(out, patchedEOCD...)

	tmpPath := archivePath + ".tmp"
	if err := os.WriteFile(tmpPath, out, 0o644); err != nil {
		os.Remove(tmpPath)
		return archerr.New(archerr.FormatInvalid, "ziparch.Polyglot", archivePath, err)
	}
	if err := os.Rename(tmpPath, archivePath); err != nil {
		os.Remove(tmpPath)
		return archerr.New(archerr.FormatInvalid, "ziparch.Polyglot", archivePath, err)
	}
	return nil
}

// findEOCDBackward scans backward from the end of buf for the EOCD
// signature, searching at most maxEOCDSearch bytes.
func findEOCDBackward(buf []byte) (int, error) {
	searchStart := len(buf) - maxEOCDSearch
	if searchStart < 0 {
		searchStart = 0
	}
	for i := len(buf) - eocdFixedSize; i >= searchStart; i-- {
		if i+4 <= len(buf) && string(buf[i:i+4]) == sigEOCDBytes {
			return i, nil
		}
	}
	return 0, archerr.New(archerr.FormatInvalid, "ziparch.Polyglot", "", nil)
}

// patchCentralDirectory walks each CDH, re-emits the first 42 bytes
// unchanged, replaces the 4-byte LFH offset at bytes 42..46 with
// old_offset+shift, then copies filename|extra|comment verbatim.
func patchCentralDirectory(buf []byte, cdOffset, eocdOffset int, shift uint32) ([]byte, error) {
	out := make([]byte, 0, eocdOffset-cdOffset)
	off := cdOffset
	for off < eocdOffset {
		if off+4 > len(buf) || string(buf[off:off+4]) != sigCDHBytes {
			break
		}
		cdh, err := parseCDH(buf, int64(off))
		if err != nil {
			return nil, archerr.New(archerr.FormatInvalid, "ziparch.Polyglot", "", err)
		}
		recordEnd := off + cdhFixedSize + len(cdh.FilenameRaw) + len(cdh.Extra) + len(cdh.Comment)
		record := append([]byte(nil), buf[off:recordEnd]...)

		b := archcodec.WriteBuf(record[42:46])
		b.Uint32(cdh.Raw.LFHOffset + shift)

		out = append(out, record...)
		off = recordEnd
	}
	return out, nil
}
