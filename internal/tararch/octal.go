package tararch

import (
	"strconv"
	"strings"
)

// parseOctalField decodes a NUL- or space-terminated octal ASCII field.
// An all-zero or unparsable field decodes to 0 rather than erroring —
// malformed numeric fields are structural data, not a read failure.
func parseOctalField(b []byte) int64 {
	s := strings.TrimRight(string(b), "\x00 ")
	s = strings.TrimLeft(s, " ")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 8, 64)
	if err != nil {
		return 0
	}
	return v
}

// formatOctalField encodes v as a NUL-terminated octal ASCII field of
// width, left-padded with zeros, matching the fixed-width layout every
// numeric USTAR field uses.
func formatOctalField(v int64, width int) []byte {
	s := strconv.FormatInt(v, 8)
	out := make([]byte, width)
	for i := range out {
		out[i] = '0'
	}
	if len(s) >= width {
		s = s[len(s)-(width-1):]
	}
	copy(out[width-1-len(s):width-1], s)
	out[width-1] = 0
	return out
}

// parseStringField trims a NUL-padded string field at its first NUL.
func parseStringField(b []byte) string {
	if i := indexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
