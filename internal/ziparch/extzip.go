package ziparch

import (
	"bytes"
	"compress/flate"
	"io"
	"os"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// OpenMode selects how Open intends to use the file: read, write, or
// append, though the structural scan itself is identical for all three —
// the only difference is how Open treats a missing file.
type OpenMode int

const (
	ModeRead OpenMode = iota
	ModeWrite
	ModeAppend
)

// EntryStatus classifies an ExtendedEntry by which of its LFH/CDH pair
// was actually found during the scan.
type EntryStatus int

const (
	StatusPaired EntryStatus = iota
	StatusOrphanedLFHOnly
	StatusOrphanedCDHOnly
	StatusOrphanedLFHWithHiddenCDH
)

func (s EntryStatus) String() string {
	switch s {
	case StatusPaired:
		return "paired"
	case StatusOrphanedLFHOnly:
		return "orphaned_lfh"
	case StatusOrphanedCDHOnly:
		return "orphaned_cdh"
	case StatusOrphanedLFHWithHiddenCDH:
		return "orphaned_lfh_hidden_cdh"
	default:
		return "unknown"
	}
}

// ExtendedEntry is the joined view of an archive member, combining
// whatever was found via the standard central directory with anything
// discovered by the independent signature sweep.
type ExtendedEntry struct {
	LFHOffset, CDHOffset             *int64
	LFHFilename, CDHFilename         string
	UnicodePath                      string
	DataOffset                       int64
	CompressedSize, UncompressedSize uint64
	CRC32                            uint32
	ExternalAttr                     uint32
	Extra, Comment                   []byte
	Status                           EntryStatus
	AmbiguousCDHs                    []int64
}

// ExtZip is an extended ZIP reader that never relies on archive/zip for
// the main walk, because archive/zip refuses or silently reconciles
// exactly the anomalies this tool needs to preserve (orphaned records,
// CDHs hidden in the EOCD comment, mismatched names).
type ExtZip struct {
	path           string
	mode           OpenMode
	includeOrphans bool
	buf            []byte

	signatures []PKSignature
	lfhs       []*ParsedLFH
	cdhs       []*ParsedCDH
	eocds      []*ParsedEOCD

	mainCD    []*ParsedCDH // central directory reachable from the last EOCD, in order
	eocd      *ParsedEOCD
	entries   []ExtendedEntry
}

// Open reads path fully into memory and runs the scan/pairing algorithm.
// A missing file under ModeRead is InputMissing; under
// ModeWrite/ModeAppend a missing file yields an empty archive to build
// onto, matching zip_handler.py's "create if absent" add-path behavior.
func Open(path string, mode OpenMode, includeOrphans bool) (*ExtZip, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mode == ModeRead {
				return nil, archerr.New(archerr.InputMissing, "ziparch.Open", path, err)
			}
			buf = nil
		} else {
			return nil, archerr.New(archerr.FormatInvalid, "ziparch.Open", path, err)
		}
	}

	z := &ExtZip{path: path, mode: mode, includeOrphans: includeOrphans, buf: buf}
	z.scan()
	z.pair()
	return z, nil
}

// scan sweeps every PK signature, then attempts to parse each one,
// dropping any that fail to decode.
func (z *ExtZip) scan() {
	z.signatures = scanSignatures(z.buf)
	for _, sig := range z.signatures {
		switch sig.Kind {
		case SigLFH:
			if lfh, err := parseLFH(z.buf, sig.Offset); err == nil {
				z.lfhs = append(z.lfhs, lfh)
			}
		case SigCDH:
			if cdh, err := parseCDH(z.buf, sig.Offset); err == nil {
				z.cdhs = append(z.cdhs, cdh)
			}
		case SigEOCD:
			if eocd, err := parseEOCD(z.buf, sig.Offset); err == nil {
				z.eocds = append(z.eocds, eocd)
			}
		}
	}
	if n := len(z.eocds); n > 0 {
		// The last EOCD in the file is authoritative when more than one is
		// present (a trailing EOCD always wins over any found earlier,
		// e.g. inside another EOCD's comment).
		z.eocd = z.eocds[n-1]
	}
}

func (z *ExtZip) findLFHByOffset(offset int64) *ParsedLFH {
	for _, lfh := range z.lfhs {
		if lfh.Offset == offset {
			return lfh
		}
	}
	return nil
}

// findCDHsForLFH returns every parsed CDH whose claimed LFHOffset equals
// offset, in scan order.
func (z *ExtZip) findCDHsForLFH(offset int64) []*ParsedCDH {
	var out []*ParsedCDH
	for _, cdh := range z.cdhs {
		if int64(cdh.Raw.LFHOffset) == offset {
			out = append(out, cdh)
		}
	}
	return out
}

// pair builds the main central directory from the EOCD (walking
// cd_offset..cd_offset+cd_size for up to total_entries CDHs), emits a
// paired entry for each, then for orphaned mode additionally surfaces
// every LFH not covered by that walk and every CDH not covered by it.
func (z *ExtZip) pair() {
	mainCDHOffsets := map[int64]bool{}
	if z.eocd != nil {
		z.mainCD = z.walkCentralDirectory(z.eocd)
		for _, cdh := range z.mainCD {
			mainCDHOffsets[cdh.Offset] = true
		}
	}

	standardLFHOffsets := map[int64]bool{}
	for _, cdh := range z.mainCD {
		standardLFHOffsets[int64(cdh.Raw.LFHOffset)] = true
		entry := z.buildPairedEntry(cdh)
		z.entries = append(z.entries, entry)
	}

	if !z.includeOrphans {
		return
	}

	for _, lfh := range z.lfhs {
		if standardLFHOffsets[lfh.Offset] {
			continue
		}
		z.entries = append(z.entries, z.buildOrphanedLFHEntry(lfh))
	}

	for _, cdh := range z.cdhs {
		if mainCDHOffsets[cdh.Offset] {
			continue
		}
		if z.findLFHByOffset(int64(cdh.Raw.LFHOffset)) != nil {
			// Its LFH exists: either the CDH was attached above to an
			// orphaned LFH (orphaned_lfh_with_hidden_cdh, or listed in
			// AmbiguousCDHs), or it claims a paired LFH, in which case it
			// is not listed as an entry of its own.
			continue
		}
		z.entries = append(z.entries, z.buildOrphanedCDHOnlyEntry(cdh))
	}
}

// walkCentralDirectory parses CDHs sequentially starting at eocd.CDOffset,
// stopping after eocd.TotalEntries records or when the region runs out —
// this is the "standard" central directory view a conforming reader sees.
func (z *ExtZip) walkCentralDirectory(eocd *ParsedEOCD) []*ParsedCDH {
	var out []*ParsedCDH
	off := int64(eocd.CDOffset)
	for i := uint16(0); i < eocd.TotalEntries; i++ {
		if off < 0 || int(off)+4 > len(z.buf) || string(z.buf[off:off+4]) != sigCDHBytes {
			break
		}
		cdh, err := parseCDH(z.buf, off)
		if err != nil {
			break
		}
		out = append(out, cdh)
		off = cdh.Offset + cdhFixedSize + int64(len(cdh.FilenameRaw)) + int64(len(cdh.Extra)) + int64(len(cdh.Comment))
	}
	return out
}

func (z *ExtZip) buildPairedEntry(cdh *ParsedCDH) ExtendedEntry {
	cdhOff := cdh.Offset
	e := ExtendedEntry{
		CDHOffset:        &cdhOff,
		CDHFilename:      cdh.Filename,
		CRC32:            cdh.Raw.CRC32,
		CompressedSize:   uint64(cdh.Raw.CompressedSize),
		UncompressedSize: uint64(cdh.Raw.UncompressedSize),
		ExternalAttr:     cdh.Raw.ExternalAttr,
		Extra:            cdh.Extra,
		Comment:          cdh.Comment,
		Status:           StatusPaired,
	}
	lfhOff := int64(cdh.Raw.LFHOffset)
	if lfh := z.findLFHByOffset(lfhOff); lfh != nil {
		off := lfh.Offset
		e.LFHOffset = &off
		e.LFHFilename = lfh.Filename
		e.DataOffset = lfh.DataOffset
		e.UnicodePath = z.resolveUnicodePath(lfh.Extra, cdh.Extra)
	} else {
		e.UnicodePath = z.resolveUnicodePath(nil, cdh.Extra)
	}
	return e
}

func (z *ExtZip) buildOrphanedLFHEntry(lfh *ParsedLFH) ExtendedEntry {
	off := lfh.Offset
	e := ExtendedEntry{
		LFHOffset:        &off,
		LFHFilename:      lfh.Filename,
		DataOffset:       lfh.DataOffset,
		CRC32:            lfh.Raw.CRC32,
		CompressedSize:   uint64(lfh.Raw.CompressedSize),
		UncompressedSize: uint64(lfh.Raw.UncompressedSize),
		Extra:            lfh.Extra,
		Status:           StatusOrphanedLFHOnly,
		UnicodePath:      z.resolveUnicodePath(lfh.Extra, nil),
	}

	matches := z.findCDHsForLFH(lfh.Offset)
	if len(matches) == 0 {
		return e
	}
	cdh := matches[0]
	cdhOff := cdh.Offset
	e.CDHOffset = &cdhOff
	e.CDHFilename = cdh.Filename
	e.ExternalAttr = cdh.Raw.ExternalAttr
	e.Comment = cdh.Comment
	e.Status = StatusOrphanedLFHWithHiddenCDH
	e.UnicodePath = z.resolveUnicodePath(lfh.Extra, cdh.Extra)
	if len(cdh.Extra) > 0 {
		e.Extra = cdh.Extra
	}
	for _, extra := range matches[1:] {
		e.AmbiguousCDHs = append(e.AmbiguousCDHs, extra.Offset)
	}
	return e
}

func (z *ExtZip) buildOrphanedCDHOnlyEntry(cdh *ParsedCDH) ExtendedEntry {
	cdhOff := cdh.Offset
	return ExtendedEntry{
		CDHOffset:        &cdhOff,
		CDHFilename:      cdh.Filename,
		CRC32:            cdh.Raw.CRC32,
		CompressedSize:   uint64(cdh.Raw.CompressedSize),
		UncompressedSize: uint64(cdh.Raw.UncompressedSize),
		ExternalAttr:     cdh.Raw.ExternalAttr,
		Extra:            cdh.Extra,
		Comment:          cdh.Comment,
		Status:           StatusOrphanedCDHOnly,
		UnicodePath:      z.resolveUnicodePath(nil, cdh.Extra),
	}
}

// resolveUnicodePath applies the conflict rule when both records carry a
// Unicode Path extra field: prefer the LFH's 0x7075 field over the CDH's.
func (z *ExtZip) resolveUnicodePath(lfhExtra, cdhExtra []byte) string {
	if p, ok := unicodePathFromExtra(lfhExtra); ok {
		return p
	}
	if p, ok := unicodePathFromExtra(cdhExtra); ok {
		return p
	}
	return ""
}

// ExtendedEntries returns the joined entry list built by Open.
func (z *ExtZip) ExtendedEntries() []ExtendedEntry {
	return z.entries
}

// FindLFH returns the parsed LFH at the given offset, if any.
func (z *ExtZip) FindLFH(offset int64) (*ParsedLFH, bool) {
	lfh := z.findLFHByOffset(offset)
	if lfh == nil {
		return nil, false
	}
	return lfh, true
}

// FindCDHFor returns the first parsed CDH claiming lfhOffset, if any.
func (z *ExtZip) FindCDHFor(lfhOffset int64) (*ParsedCDH, bool) {
	matches := z.findCDHsForLFH(lfhOffset)
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}

// ReadEntryBytes seeks to the entry's data offset, reads CompressedSize
// bytes, and decompresses per the stored compression method (store or
// deflate only; other methods are rejected as unsupported).
func (z *ExtZip) ReadEntryBytes(e ExtendedEntry) ([]byte, error) {
	start := int(e.DataOffset)
	end := start + int(e.CompressedSize)
	if start < 0 || end > len(z.buf) {
		return nil, archerr.New(archerr.ShortRead, "ziparch.ReadEntryBytes", z.path, nil)
	}
	raw := z.buf[start:end]

	method := z.compressionMethodFor(e)
	switch method {
	case 0: // store
		return append([]byte(nil), raw...), nil
	case 8: // deflate
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		out, err := io.ReadAll(fr)
		if err != nil {
			return nil, archerr.New(archerr.FormatInvalid, "ziparch.ReadEntryBytes", z.path, err)
		}
		return out, nil
	default:
		return nil, archerr.New(archerr.UnsupportedOp, "ziparch.ReadEntryBytes", z.path, nil)
	}
}

func (z *ExtZip) compressionMethodFor(e ExtendedEntry) uint16 {
	if e.LFHOffset != nil {
		if lfh := z.findLFHByOffset(*e.LFHOffset); lfh != nil {
			return lfh.Raw.CompressionMethod
		}
	}
	return 0
}

// NameList returns every entry's display name, including orphans when the
// archive was opened with includeOrphans.
func (z *ExtZip) NameList() []string {
	names := make([]string, 0, len(z.entries))
	for _, e := range z.entries {
		names = append(names, z.GetDisplayName(e))
	}
	return names
}

// GetInfo returns the first entry whose LFH or CDH filename (or display
// name) matches name.
func (z *ExtZip) GetInfo(name string) (ExtendedEntry, bool) {
	for _, e := range z.entries {
		if e.LFHFilename == name || e.CDHFilename == name || z.GetDisplayName(e) == name {
			return e, true
		}
	}
	return ExtendedEntry{}, false
}

// GetDisplayName resolves a single human-readable name for e: unicode_path
// when it agrees with both stored names or is the only name; the plain
// name when there is no unicode_path and the CDH and LFH names agree, or
// when only one name is present at all. Otherwise every non-empty name is
// tagged with its source (U:, C:, L:) and the tags are joined by spaces.
func (z *ExtZip) GetDisplayName(e ExtendedEntry) string {
	if e.UnicodePath != "" && e.UnicodePath == e.LFHFilename && e.UnicodePath == e.CDHFilename {
		return e.UnicodePath
	}
	if e.UnicodePath != "" && e.LFHFilename == "" && e.CDHFilename == "" {
		return e.UnicodePath
	}
	if e.UnicodePath == "" && e.CDHFilename != "" && e.CDHFilename == e.LFHFilename {
		return e.CDHFilename
	}

	var tagged []string
	if e.UnicodePath != "" {
		tagged = append(tagged, "U:"+e.UnicodePath)
	}
	if e.CDHFilename != "" {
		tagged = append(tagged, "C:"+e.CDHFilename)
	}
	if e.LFHFilename != "" {
		tagged = append(tagged, "L:"+e.LFHFilename)
	}
	if len(tagged) == 1 {
		return tagged[0][2:]
	}
	if len(tagged) == 0 {
		return ""
	}
	out := tagged[0]
	for _, t := range tagged[1:] {
		out += " " + t
	}
	return out
}

// Close releases resources. ExtZip holds no open file descriptor (the
// whole file is read into memory by Open), so Close is a no-op kept for
// symmetry with callers that defer it unconditionally.
func (z *ExtZip) Close() error {
	return nil
}
