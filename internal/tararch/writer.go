package tararch

import (
	"time"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
)

// defaultAddMode is applied when the caller supplies no --mode for add.
const defaultAddMode = 0o744

const longNameThreshold = lenName

// buildEntry is the in-memory authoring form serialized by
// serializeArchive; distinct from TarEntry (the parsed-from-disk form)
// because a freshly authored entry has no HeaderOffset yet.
type buildEntry struct {
	Name    string
	Content []byte
	Header  RawTarHeader
}

// newBuildEntry constructs a buildEntry for Add/Replace, applying
// EntryAttributes the way zip_handler.py's apply_special_bits does, plus
// the TAR-specific symlink/hardlink typeflag conversion.
func newBuildEntry(path string, content []byte, attrs archcodec.EntryAttributes) buildEntry {
	mode := attrs.ModeOrDefault(defaultAddMode)
	mode = archcodec.ApplySpecialBits(mode, attrs.SetUID, attrs.SetGID, attrs.Sticky)

	typeFlag := TypeRegular
	linkName := ""
	size := int64(len(content))
	payload := content

	switch {
	case attrs.Symlink != "":
		typeFlag = TypeSymlink
		linkName = attrs.Symlink
		size = 0
		payload = nil
	case attrs.Hardlink != "":
		typeFlag = TypeHardLink
		linkName = attrs.Hardlink
		size = 0
		payload = nil
	}

	mtime := time.Now()
	if attrs.MTime != nil {
		mtime = *attrs.MTime
	}

	var uid, gid int64
	if attrs.UID != nil {
		uid = *attrs.UID
	}
	if attrs.GID != nil {
		gid = *attrs.GID
	}

	h := RawTarHeader{
		Name:     path,
		Mode:     int64(mode),
		UID:      uid,
		GID:      gid,
		Size:     size,
		MTime:    mtime.Unix(),
		TypeFlag: typeFlag,
		LinkName: linkName,
		Magic:    ustarMagic,
		Version:  ustarVersion,
	}
	return buildEntry{Name: path, Content: payload, Header: h}
}

// serializeArchive lays out every entry as a header block (preceded by a
// GNU 'L' long-name block when Name exceeds the fixed 100-byte field) plus
// its padded payload, followed by two zero blocks.
func serializeArchive(entries []buildEntry) []byte {
	var out []byte
	for _, e := range entries {
		h := e.Header
		if len(h.Name) > longNameThreshold {
			out = append(out, longNameBlock(h.Name)...)
			h.Name = h.Name[:longNameThreshold-1]
		}
		out = append(out, writeHeaderBlock(h)...)
		out = append(out, e.Content...)
		pad := padTo512(int64(len(e.Content))) - int64(len(e.Content))
		out = append(out, make([]byte, pad)...)
	}
	out = append(out, make([]byte, blockSize*2)...)
	return out
}

// longNameBlock builds a GNU 'L' header plus its null-terminated payload,
// padded to a block boundary.
func longNameBlock(name string) []byte {
	payload := append([]byte(name), 0)
	h := RawTarHeader{
		Name:     "././@LongLink",
		Mode:     0,
		Size:     int64(len(payload)),
		TypeFlag: TypeGNULongName,
		Magic:    ustarMagic,
		Version:  ustarVersion,
	}
	out := writeHeaderBlock(h)
	out = append(out, payload...)
	pad := padTo512(int64(len(payload))) - int64(len(payload))
	out = append(out, make([]byte, pad)...)
	return out
}
