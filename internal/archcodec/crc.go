package archcodec

import "hash/crc32"

// CRC32IEEE computes the standard IEEE 802.3 CRC-32, the checksum ZIP and
// GNU tar both use, the same way zipserve computes it in example_test.go
// via crc32.NewIEEE().
func CRC32IEEE(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
