package tararch

// isZeroBlock reports whether buf (a full 512-byte block) is entirely
// NUL; the archive terminator is two consecutive zero blocks.
func isZeroBlock(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// parseHeaderBlock decodes one 512-byte block into a RawTarHeader, with no
// validation beyond length — a corrupt chksum or non-octal numeric field
// decodes to whatever parseOctalField returns rather than failing; an
// invalid block is skipped, not treated as fatal, but that skip decision
// is made by the caller scanning for structure, not here.
func parseHeaderBlock(buf []byte) RawTarHeader {
	return RawTarHeader{
		Name:      parseStringField(buf[offName : offName+lenName]),
		Mode:      parseOctalField(buf[offMode : offMode+lenMode]),
		UID:       parseOctalField(buf[offUID : offUID+lenUID]),
		GID:       parseOctalField(buf[offGID : offGID+lenGID]),
		Size:      parseOctalField(buf[offSize : offSize+lenSize]),
		MTime:     parseOctalField(buf[offMTime : offMTime+lenMTime]),
		Chksum:    parseOctalField(buf[offChksum : offChksum+lenChksum]),
		TypeFlag:  buf[offTypeFlag],
		LinkName:  parseStringField(buf[offLinkName : offLinkName+lenLinkName]),
		Magic:     parseStringField(buf[offMagic : offMagic+lenMagic]),
		Version:   parseStringField(buf[offVersion : offVersion+lenVersion]),
		UName:     parseStringField(buf[offUName : offUName+lenUName]),
		GName:     parseStringField(buf[offGName : offGName+lenGName]),
		DevMajor:  parseOctalField(buf[offDevMajor : offDevMajor+lenDevMajor]),
		DevMinor:  parseOctalField(buf[offDevMinor : offDevMinor+lenDevMinor]),
		Prefix:    parseStringField(buf[offPrefix : offPrefix+lenPrefix]),
	}
}

// writeHeaderBlock serializes h into a fresh 512-byte block and computes
// its checksum per the USTAR rule: the chksum field itself is treated as
// eight ASCII spaces while summing every byte.
func writeHeaderBlock(h RawTarHeader) []byte {
	buf := make([]byte, blockSize)
	putString(buf[offName:offName+lenName], h.Name)
	copy(buf[offMode:offMode+lenMode], formatOctalField(h.Mode, lenMode))
	copy(buf[offUID:offUID+lenUID], formatOctalField(h.UID, lenUID))
	copy(buf[offGID:offGID+lenGID], formatOctalField(h.GID, lenGID))
	copy(buf[offSize:offSize+lenSize], formatOctalField(h.Size, lenSize))
	copy(buf[offMTime:offMTime+lenMTime], formatOctalField(h.MTime, lenMTime))
	for i := 0; i < lenChksum; i++ {
		buf[offChksum+i] = ' '
	}
	buf[offTypeFlag] = h.TypeFlag
	putString(buf[offLinkName:offLinkName+lenLinkName], h.LinkName)
	magic := h.Magic
	if magic == "" {
		magic = ustarMagic
	}
	putString(buf[offMagic:offMagic+lenMagic], magic)
	version := h.Version
	if version == "" {
		version = ustarVersion
	}
	putString(buf[offVersion:offVersion+lenVersion], version)
	putString(buf[offUName:offUName+lenUName], h.UName)
	putString(buf[offGName:offGName+lenGName], h.GName)
	copy(buf[offDevMajor:offDevMajor+lenDevMajor], formatOctalField(h.DevMajor, lenDevMajor))
	copy(buf[offDevMinor:offDevMinor+lenDevMinor], formatOctalField(h.DevMinor, lenDevMinor))
	putString(buf[offPrefix:offPrefix+lenPrefix], h.Prefix)

	var sum int64
	for _, b := range buf {
		sum += int64(b)
	}
	chk := formatOctalField(sum, lenChksum)
	chk[lenChksum-1] = ' '
	copy(buf[offChksum:offChksum+lenChksum], chk)
	return buf
}

func putString(dst []byte, s string) {
	copy(dst, s)
}

// padTo512 rounds n up to the next multiple of blockSize: a tar payload
// occupies size bytes followed by zero padding out to a 512-byte boundary.
func padTo512(n int64) int64 {
	if n%blockSize == 0 {
		return n
	}
	return n + (blockSize - n%blockSize)
}
