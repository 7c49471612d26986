package alchemist

import (
	"github.com/avlidienbrunn/archive-alchemist-go/internal/applog"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/ziparch"
)

// ZipHandler adapts internal/ziparch to the CLI's request shape: it opens
// the archive fresh for every call (matching zip_handler.py's per-call
// ZipFile open) rather than holding a long-lived handle, since this tool
// is a single-command-per-process CLI, never a long-running server.
type ZipHandler struct {
	Path           string
	IncludeOrphans bool
}

func (h *ZipHandler) openForRead() (*ziparch.ExtZip, error) {
	return ziparch.Open(h.Path, ziparch.ModeRead, h.IncludeOrphans)
}

func (h *ZipHandler) openForWrite() (*ziparch.ExtZip, error) {
	return ziparch.Open(h.Path, ziparch.ModeWrite, h.IncludeOrphans)
}

// Add stores content at path with attrs, or, when dirEntries is non-nil
// (a --content-directory walk), stores every walked entry under path,
// replacing any walked entry whose name already exists in the archive.
func (h *ZipHandler) Add(path string, content []byte, attrs archcodec.EntryAttributes, dirEntries []DirEntry) error {
	z, err := h.openForWrite()
	if err != nil {
		return err
	}
	applog.Debug("zip add", "archive", h.Path, "path", path)
	if dirEntries != nil {
		for _, e := range dirEntries {
			req := ziparch.AddRequest{Path: e.ArchivePath, Content: e.Content}
			if _, exists := z.GetInfo(e.ArchivePath); exists {
				err = z.Replace(req)
			} else {
				err = z.Add(req)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
	return z.Add(ziparch.AddRequest{Path: path, Content: content, Attrs: attrs})
}

func (h *ZipHandler) Replace(path string, content []byte, attrs archcodec.EntryAttributes) error {
	z, err := h.openForWrite()
	if err != nil {
		return err
	}
	applog.Debug("zip replace", "archive", h.Path, "path", path)
	return z.Replace(ziparch.AddRequest{Path: path, Content: content, Attrs: attrs})
}

func (h *ZipHandler) Append(path string, content []byte) error {
	z, err := h.openForWrite()
	if err != nil {
		return err
	}
	applog.Debug("zip append", "archive", h.Path, "path", path)
	return z.Append(path, content)
}

func (h *ZipHandler) Modify(path string, attrs archcodec.EntryAttributes) error {
	if attrs.Hardlink != "" {
		applog.Info("hardlink requested on a zip entry; zip has no native hardlink type, storing target as content", "path", path)
	}
	z, err := h.openForWrite()
	if err != nil {
		return err
	}
	applog.Debug("zip modify", "archive", h.Path, "path", path)
	return z.Modify(path, attrs)
}

func (h *ZipHandler) Remove(path string, recursive bool) (int, error) {
	z, err := h.openForWrite()
	if err != nil {
		return 0, err
	}
	applog.Debug("zip remove", "archive", h.Path, "path", path, "recursive", recursive)
	return z.Remove(path, recursive)
}

func (h *ZipHandler) List() ([]ziparch.ExtendedEntry, error) {
	z, err := h.openForRead()
	if err != nil {
		return nil, err
	}
	return z.ExtendedEntries(), nil
}

func (h *ZipHandler) DisplayName(e ziparch.ExtendedEntry) string {
	// opening a throwaway handle just for display formatting would be
	// wasteful; GetDisplayName has no archive-wide state dependency
	z := &ziparch.ExtZip{}
	return z.GetDisplayName(e)
}

// Read returns the decompressed payload of the named entry.
func (h *ZipHandler) Read(path string) ([]byte, error) {
	z, err := h.openForRead()
	if err != nil {
		return nil, err
	}
	entry, ok := z.GetInfo(path)
	if !ok {
		return nil, archerr.New(archerr.EntryNotFound, "alchemist.ZipHandler.Read", path, nil)
	}
	return z.ReadEntryBytes(entry)
}

// ReadByEntry decompresses an already-resolved entry directly, used by the
// CLI's `--index` disambiguation when several entries share a display name.
func (h *ZipHandler) ReadByEntry(entry ziparch.ExtendedEntry) ([]byte, error) {
	z, err := h.openForRead()
	if err != nil {
		return nil, err
	}
	return z.ReadEntryBytes(entry)
}

// Polyglot prepends prefix to the archive, patching offsets to compensate.
func (h *ZipHandler) Polyglot(prefix []byte) error {
	applog.Debug("zip polyglot", "archive", h.Path, "prefix_len", len(prefix))
	return ziparch.Polyglot(h.Path, prefix)
}
