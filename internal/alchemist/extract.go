package alchemist

import (
	"os"
	"path/filepath"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/applog"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// ExtractOptions mirrors the `extract` subcommand's flags.
type ExtractOptions struct {
	OnlyPath            string // "" extracts everything
	OutDir              string
	Vulnerable          bool
	NormalizePermissions bool
}

// LinkKind distinguishes the two TAR link typeflags from a plain file;
// ZIP entries only ever carry LinkSymlink (the Unix external-attribute
// symlink bit has no hardlink counterpart).
type LinkKind int

const (
	LinkNone LinkKind = iota
	LinkSymlink
	LinkHardlink
)

// ExtractFile writes one entry's content to disk under outDir, applying
// SafeExtractPath unless Vulnerable is set. In non-vulnerable mode a
// symlink/hardlink entry is written as a regular placeholder file rather
// than followed onto the host filesystem, unless --vulnerable asks for it
// explicitly — in which case a hardlink entry is recreated with a real
// os.Link against the already-extracted target, and a symlink entry with
// os.Symlink, matching the distinction the archive typeflag encodes.
func ExtractFile(outDir, name string, content []byte, mode uint32, linkKind LinkKind, linkTarget string, vulnerable, normalizePermissions bool) error {
	dest := SafeExtractPath(outDir, name, vulnerable)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return archerr.New(archerr.FormatInvalid, "alchemist.ExtractFile", dest, err)
	}

	if linkKind != LinkNone {
		if vulnerable {
			if linkKind == LinkHardlink {
				target := filepath.Join(outDir, linkTarget)
				applog.Debug("extract hardlink", "path", dest, "target", target)
				if err := os.Link(target, dest); err != nil {
					return archerr.New(archerr.FormatInvalid, "alchemist.ExtractFile", dest, err)
				}
				return nil
			}
			applog.Debug("extract symlink", "path", dest, "target", linkTarget)
			if err := os.Symlink(linkTarget, dest); err != nil {
				return archerr.New(archerr.FormatInvalid, "alchemist.ExtractFile", dest, err)
			}
			return nil
		}
		applog.Debug("extract link placeholder (non-vulnerable)", "path", dest)
		content = []byte(linkTarget)
	}

	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return archerr.New(archerr.FormatInvalid, "alchemist.ExtractFile", dest, err)
	}

	if !normalizePermissions {
		fileMode := archcodec.UnixModeToGoFileMode(mode) & 0o777
		if fileMode != 0 {
			_ = os.Chmod(dest, fileMode)
		}
	}
	return nil
}
