package alchemist

import (
	"path/filepath"
	"strings"
)

// SafeExtractPath implements the non-vulnerable extraction contract: an
// entry name containing ".." or an absolute prefix must land *under*
// outDir, never escape it. Reconstructed from BaseArchiveHandler's callers
// the same way ResolveContent is — the captured `_sanitize_path` body is
// absent from the snapshot, but every caller's usage (join under outDir,
// then confine) is unambiguous.
//
// vulnerable=true reproduces the attack this tool exists to demonstrate:
// the raw name is joined against outDir with no confinement at all, so a
// literal "../../etc/passwd" escapes outDir exactly as a naive extractor
// would.
func SafeExtractPath(outDir, name string, vulnerable bool) string {
	if vulnerable {
		return filepath.Join(outDir, name)
	}

	cleaned := filepath.ToSlash(filepath.Clean("/" + name))
	cleaned = strings.TrimPrefix(cleaned, "/")
	return filepath.Join(outDir, filepath.FromSlash(cleaned))
}
