package ziparch

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// utf8FlagBit is bit 11 of the general-purpose flags field, set when the
// filename and comment are UTF-8 rather than CP437.
const utf8FlagBit = 0x800

// decodeFilename renders raw into its displayable form: UTF-8 when the
// flag bit is set, CP437 otherwise. Decode failures never fall back to the
// lossy unicode.ReplacementChar, since the raw bytes must stay
// authoritative; on any decode error we surrogate-escape by keeping the
// CP437 1:1 byte-to-rune mapping, which never fails (every byte 0x00-0xFF
// has a CP437 codepoint) so this path never actually fails for CP437, and
// for invalid UTF-8 we fall back to the same CP437 decode rather than
// substituting replacement characters.
func decodeFilename(raw []byte, flags uint16) string {
	if flags&utf8FlagBit != 0 {
		if s := string(raw); isValidUTF8(s) {
			return s
		}
	}
	return decodeCP437(raw)
}

func isValidUTF8(s string) bool {
	return strings.ToValidUTF8(s, "�") == s
}

// decodeCP437 decodes raw as IBM Code Page 437, the historical default ZIP
// encoding, grounded on golang.org/x/text/encoding/charmap's use in the
// pack (quay-claircore, elliotnunn-BeHierarchic both import x/text
// directly for the same kind of legacy-charset decoding).
func decodeCP437(raw []byte) string {
	out, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		// charmap.CodePage437 is a total mapping over all 256 byte values,
		// so this branch is unreachable in practice; kept only because the
		// Decoder interface can return an error.
		return string(raw)
	}
	return string(out)
}
