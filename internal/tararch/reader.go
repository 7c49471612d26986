package tararch

import "io"

// ReadVerbose does a verbose block-by-block scan: parse
// each 512-byte header, track a preceding GNU 'L' long-name payload and
// apply it to the next entry's EffectiveName, stop at two consecutive zero
// blocks, and skip rather than fail on a block that doesn't look like a
// header. There is no archive/tar.Reader equivalent used here because that
// type hides the GNU long-name mechanism the caller needs to see directly.
func ReadVerbose(r io.Reader) ([]TarEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var entries []TarEntry
	var pendingLongName string
	var zeroBlocks int
	off := int64(0)

	for off+blockSize <= int64(len(data)) {
		block := data[off : off+blockSize]
		if isZeroBlock(block) {
			zeroBlocks++
			off += blockSize
			if zeroBlocks >= 2 {
				break
			}
			continue
		}
		zeroBlocks = 0

		h := parseHeaderBlock(block)
		headerOffset := off
		off += blockSize

		payloadLen := h.Size
		if payloadLen < 0 {
			// malformed size field; skip this block only, not the archive
			continue
		}
		padded := padTo512(payloadLen)
		if off+padded > int64(len(data)) {
			// truncated payload: not fatal, take what's there
			padded = int64(len(data)) - off
			if padded < 0 {
				padded = 0
			}
		}
		var payload []byte
		if payloadLen > 0 {
			end := off + payloadLen
			if end > int64(len(data)) {
				end = int64(len(data))
			}
			payload = append([]byte(nil), data[off:end]...)
		}
		off += padded

		if h.TypeFlag == TypeGNULongName {
			pendingLongName = parseStringField(payload)
			continue
		}

		entry := TarEntry{
			Header:        h,
			Payload:       payload,
			EffectiveName: pendingLongName,
			HeaderOffset:  headerOffset,
		}
		pendingLongName = ""
		entries = append(entries, entry)
	}

	return entries, nil
}
