package alchemist

import (
	"github.com/avlidienbrunn/archive-alchemist-go/internal/applog"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/tararch"
)

// TarHandler adapts internal/tararch to the CLI's request shape, the TAR
// counterpart to ZipHandler.
type TarHandler struct {
	Path        string
	Compression tararch.Compression
}

func (h *TarHandler) handler() *tararch.Handler {
	return &tararch.Handler{Path: h.Path, Compression: h.Compression}
}

func (h *TarHandler) Add(path string, content []byte, attrs archcodec.EntryAttributes, dirEntries []DirEntry) error {
	th := h.handler()
	applog.Debug("tar add", "archive", h.Path, "path", path)
	if dirEntries != nil {
		for _, e := range dirEntries {
			if err := th.Add(tararch.AddRequest{Path: e.ArchivePath, Content: e.Content}); err != nil {
				return err
			}
		}
		return nil
	}
	return th.Add(tararch.AddRequest{Path: path, Content: content, Attrs: attrs})
}

func (h *TarHandler) Replace(path string, content []byte, attrs archcodec.EntryAttributes) error {
	applog.Debug("tar replace", "archive", h.Path, "path", path)
	return h.handler().Replace(tararch.AddRequest{Path: path, Content: content, Attrs: attrs})
}

func (h *TarHandler) Append(path string, content []byte) error {
	applog.Debug("tar append", "archive", h.Path, "path", path)
	return h.handler().Append(path, content)
}

func (h *TarHandler) Modify(path string, attrs archcodec.EntryAttributes) error {
	if attrs.UnicodePathOverride != nil {
		return archerr.New(archerr.UnsupportedOp, "alchemist.TarHandler.Modify", path, nil)
	}
	applog.Debug("tar modify", "archive", h.Path, "path", path)
	return h.handler().Modify(path, attrs)
}

func (h *TarHandler) Remove(path string, recursive bool) (int, error) {
	applog.Debug("tar remove", "archive", h.Path, "path", path, "recursive", recursive)
	return h.handler().Remove(path, recursive)
}

func (h *TarHandler) List() ([]tararch.TarEntry, error) {
	return h.handler().List()
}

func (h *TarHandler) Read(path string) ([]byte, error) {
	entries, err := h.handler().List()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.DisplayName() == path {
			return e.Payload, nil
		}
	}
	return nil, archerr.New(archerr.EntryNotFound, "alchemist.TarHandler.Read", path, nil)
}
