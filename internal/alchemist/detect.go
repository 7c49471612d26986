// Package alchemist is the glue layer between the ZIP/TAR codecs
// (internal/ziparch, internal/tararch) and the CLI (cmd/alchemist):
// archive-type detection, content resolution, extraction-path sanitizing,
// and per-type request adaptation. Grounded on archive-alchemist.py
// translated to Go idiom.
package alchemist

import (
	"bytes"
	"os"
	"strings"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/tararch"
)

// ArchiveType is the closed set of container kinds the CLI dispatches on.
type ArchiveType int

const (
	TypeZip ArchiveType = iota
	TypeTar
	TypeTarGz
	TypeTarXz
	TypeTarBz2
)

func (t ArchiveType) String() string {
	switch t {
	case TypeZip:
		return "zip"
	case TypeTar:
		return "tar"
	case TypeTarGz:
		return "tar.gz"
	case TypeTarXz:
		return "tar.xz"
	case TypeTarBz2:
		return "tar.bz2"
	default:
		return "unknown"
	}
}

// Compression maps a TAR-family ArchiveType to its tararch.Compression;
// TypeZip is not valid here.
func (t ArchiveType) Compression() tararch.Compression {
	switch t {
	case TypeTarGz:
		return tararch.Gzip
	case TypeTarXz:
		return tararch.XZ
	case TypeTarBz2:
		return tararch.Bzip2
	default:
		return tararch.None
	}
}

// DetectArchiveType auto-detects the container: magic bytes when the file
// exists, otherwise extension, with an explicit typeHint (the `-t` flag)
// always taking precedence — grounded on archive-alchemist.py's
// `_detect_archive_type`.
func DetectArchiveType(path string, typeHint string) (ArchiveType, error) {
	if t, ok := parseTypeHint(typeHint); ok {
		return t, nil
	}

	if data, err := os.ReadFile(path); err == nil {
		switch {
		case len(data) >= 4 && bytes.Equal(data[:4], []byte("PK\x03\x04")):
			return TypeZip, nil
		case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
			return TypeTarGz, nil
		case len(data) >= 6 && bytes.Equal(data[:6], []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}):
			return TypeTarXz, nil
		case len(data) >= 3 && bytes.Equal(data[:3], []byte("BZh")):
			return TypeTarBz2, nil
		default:
			if _, err := tararch.ReadVerbose(bytes.NewReader(data)); err == nil {
				return TypeTar, nil
			}
		}
	}

	return detectByExtension(path)
}

func parseTypeHint(hint string) (ArchiveType, bool) {
	switch strings.ToLower(hint) {
	case "zip":
		return TypeZip, true
	case "tar":
		return TypeTar, true
	case "tar.gz", "tgz":
		return TypeTarGz, true
	case "tar.xz", "txz":
		return TypeTarXz, true
	case "tar.bz2", "tbz2":
		return TypeTarBz2, true
	default:
		return 0, false
	}
}

func detectByExtension(path string) (ArchiveType, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return TypeZip, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return TypeTarGz, nil
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return TypeTarXz, nil
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"):
		return TypeTarBz2, nil
	case strings.HasSuffix(lower, ".tar"):
		return TypeTar, nil
	default:
		return 0, archerr.New(archerr.FormatInvalid, "alchemist.DetectArchiveType", path, nil)
	}
}
