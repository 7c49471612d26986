// Package tararch implements the POSIX USTAR + GNU long-name structural
// reader/writer: raw header field access independent of interpretation,
// entry authoring with exact control over mode/uid/gid/mtime/type/linkname,
// and rewrite-based mutation for both plain and compressed streams.
//
// zipserve has no TAR analogue, so the block layout and field offsets below
// are grounded directly on the POSIX USTAR format plus
// original_source/handlers/tar_handler.py's member-iteration semantics,
// expressed with the same byte-cursor idiom as archcodec.WriteBuf rather
// than archive/tar.Reader, since the tool needs raw octal fields and
// explicit GNU long-name visibility that archive/tar does not expose.
package tararch

const (
	blockSize = 512

	offName     = 0
	offMode     = 100
	offUID      = 108
	offGID      = 116
	offSize     = 124
	offMTime    = 136
	offChksum   = 148
	offTypeFlag = 156
	offLinkName = 157
	offMagic    = 257
	offVersion  = 263
	offUName    = 265
	offGName    = 297
	offDevMajor = 329
	offDevMinor = 337
	offPrefix   = 345

	lenName     = 100
	lenMode     = 8
	lenUID      = 8
	lenGID      = 8
	lenSize     = 12
	lenMTime    = 12
	lenChksum   = 8
	lenLinkName = 100
	lenMagic    = 6
	lenVersion  = 2
	lenUName    = 32
	lenGName    = 32
	lenDevMajor = 8
	lenDevMinor = 8
	lenPrefix   = 155
)

// TypeFlag values, matching POSIX USTAR plus the GNU long-name extension.
const (
	TypeRegular       byte = '0'
	TypeRegularLegacy byte = 0
	TypeHardLink      byte = '1'
	TypeSymlink       byte = '2'
	TypeCharDevice    byte = '3'
	TypeBlockDevice   byte = '4'
	TypeDirectory     byte = '5'
	TypeFifo          byte = '6'
	TypeGNULongName   byte = 'L'
	TypeGNULongLink   byte = 'K'
	TypePaxExtended   byte = 'x'
)

const (
	ustarMagic   = "ustar"
	ustarVersion = "00"
)

// RawTarHeader is the parsed 512-byte fixed block, with every field
// exposed exactly as stored rather than merged into a higher-level view.
type RawTarHeader struct {
	Name, LinkName, Magic, Version, UName, GName, Prefix string
	Mode                                                  int64
	UID, GID                                              int64
	Size, MTime                                            int64
	Chksum                                                 int64
	TypeFlag                                               byte
	DevMajor, DevMinor                                     int64
}

// EffectiveName is Name, or Prefix/Name when a USTAR prefix is set.
func (h RawTarHeader) EffectiveName() string {
	if h.Prefix == "" {
		return h.Name
	}
	return h.Prefix + "/" + h.Name
}

// TarEntry pairs a header with its payload bytes. EffectiveName is the
// name a GNU 'L' header supplied for it, if any, overriding h.Name: when a
// 'L' header precedes an entry, the entry's effective name is the payload
// of the 'L' entry rather than the header's own name field.
type TarEntry struct {
	Header       RawTarHeader
	Payload      []byte
	EffectiveName string
	HeaderOffset int64
}

// DisplayName returns EffectiveName if a GNU long name supplied one,
// otherwise the header's own name.
func (e TarEntry) DisplayName() string {
	if e.EffectiveName != "" {
		return e.EffectiveName
	}
	return e.Header.EffectiveName()
}
