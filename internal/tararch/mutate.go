package tararch

import (
	"bytes"
	"os"
	"strings"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// Handler mutates a TAR archive at a fixed path under a fixed container,
// grounded on tar_handler.py's per-archive-path handler object.
type Handler struct {
	Path        string
	Compression Compression
}

// AddRequest mirrors ziparch.AddRequest: the entry's name, its content,
// and the typed attributes replacing the source's Args bag.
type AddRequest struct {
	Path    string
	Content []byte
	Attrs   archcodec.EntryAttributes
}

func (h *Handler) load() ([]TarEntry, error) {
	raw, err := os.ReadFile(h.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, archerr.New(archerr.FormatInvalid, "tararch.Handler.load", h.Path, err)
	}
	tarBytes, err := decompress(raw, h.Compression)
	if err != nil {
		return nil, archerr.New(archerr.FormatInvalid, "tararch.Handler.load", h.Path, err)
	}
	entries, err := ReadVerbose(bytes.NewReader(tarBytes))
	if err != nil {
		return nil, archerr.New(archerr.FormatInvalid, "tararch.Handler.load", h.Path, err)
	}
	return entries, nil
}

func (h *Handler) save(entries []buildEntry) error {
	raw := serializeArchive(entries)
	out, err := compress(raw, h.Compression)
	if err != nil {
		return archerr.New(archerr.FormatInvalid, "tararch.Handler.save", h.Path, err)
	}
	tmp := h.Path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		os.Remove(tmp)
		return archerr.New(archerr.FormatInvalid, "tararch.Handler.save", h.Path, err)
	}
	if err := os.Rename(tmp, h.Path); err != nil {
		os.Remove(tmp)
		return archerr.New(archerr.FormatInvalid, "tararch.Handler.save", h.Path, err)
	}
	return nil
}

func toBuildEntries(entries []TarEntry) []buildEntry {
	out := make([]buildEntry, 0, len(entries))
	for _, e := range entries {
		h := e.Header
		if e.EffectiveName != "" {
			h.Name = e.EffectiveName
		}
		out = append(out, buildEntry{Name: h.Name, Content: e.Payload, Header: h})
	}
	return out
}

// Add appends req as a new entry, rewriting the whole archive — every
// mutation is a full rewrite, for both compressed and uncompressed tars.
func (h *Handler) Add(req AddRequest) error {
	existing, err := h.load()
	if err != nil {
		return err
	}
	entries := toBuildEntries(existing)
	entries = append(entries, newBuildEntry(req.Path, req.Content, req.Attrs))
	return h.save(entries)
}

// Replace removes any existing entry at req.Path and adds req in its place.
func (h *Handler) Replace(req AddRequest) error {
	existing, err := h.load()
	if err != nil {
		return err
	}
	entries := make([]buildEntry, 0, len(existing)+1)
	for _, e := range toBuildEntries(existing) {
		if e.Name != req.Path {
			entries = append(entries, e)
		}
	}
	entries = append(entries, newBuildEntry(req.Path, req.Content, req.Attrs))
	return h.save(entries)
}

// Append concatenates content onto the named entry's existing payload.
func (h *Handler) Append(path string, content []byte) error {
	existing, err := h.load()
	if err != nil {
		return err
	}
	entries := toBuildEntries(existing)
	found := false
	for i := range entries {
		if entries[i].Name == path {
			entries[i].Content = append(entries[i].Content, content...)
			entries[i].Header.Size = int64(len(entries[i].Content))
			found = true
			break
		}
	}
	if !found {
		return archerr.New(archerr.EntryNotFound, "tararch.Handler.Append", path, nil)
	}
	return h.save(entries)
}

// Modify applies attrs to an existing entry in place, converting to a
// symlink or hardlink when requested: --symlink sets typeflag to '2' and
// size to 0; --hardlink sets typeflag to '1' and size 0. Otherwise the
// payload is untouched.
func (h *Handler) Modify(path string, attrs archcodec.EntryAttributes) error {
	existing, err := h.load()
	if err != nil {
		return err
	}
	entries := toBuildEntries(existing)
	found := false
	for i := range entries {
		if entries[i].Name != path {
			continue
		}
		found = true
		hdr := entries[i].Header
		if attrs.Mode != nil {
			hdr.Mode = int64(archcodec.ApplySpecialBits(*attrs.Mode, attrs.SetUID, attrs.SetGID, attrs.Sticky))
		} else if attrs.SetUID || attrs.SetGID || attrs.Sticky {
			hdr.Mode = int64(archcodec.ApplySpecialBits(uint32(hdr.Mode), attrs.SetUID, attrs.SetGID, attrs.Sticky))
		}
		if attrs.UID != nil {
			hdr.UID = *attrs.UID
		}
		if attrs.GID != nil {
			hdr.GID = *attrs.GID
		}
		if attrs.MTime != nil {
			hdr.MTime = attrs.MTime.Unix()
		}
		switch {
		case attrs.Symlink != "":
			hdr.TypeFlag = TypeSymlink
			hdr.LinkName = attrs.Symlink
			hdr.Size = 0
			entries[i].Content = nil
		case attrs.Hardlink != "":
			hdr.TypeFlag = TypeHardLink
			hdr.LinkName = attrs.Hardlink
			hdr.Size = 0
			entries[i].Content = nil
		}
		entries[i].Header = hdr
		break
	}
	if !found {
		return archerr.New(archerr.EntryNotFound, "tararch.Handler.Modify", path, nil)
	}
	return h.save(entries)
}

// Remove deletes the named entry, or every entry under it when recursive,
// matching ziparch's Remove semantics (exact match, or recursive with an
// empty path matching everything, or recursive with a path prefix).
func (h *Handler) Remove(path string, recursive bool) (int, error) {
	existing, err := h.load()
	if err != nil {
		return 0, err
	}
	entries := toBuildEntries(existing)
	var kept []buildEntry
	removed := 0
	for _, e := range entries {
		if matchesRemove(e.Name, path, recursive) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0, archerr.New(archerr.EntryNotFound, "tararch.Handler.Remove", path, nil)
	}
	if err := h.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func matchesRemove(name, target string, recursive bool) bool {
	if name == target {
		return true
	}
	if !recursive {
		return false
	}
	if target == "" {
		return true
	}
	prefix := strings.TrimSuffix(target, "/") + "/"
	return strings.HasPrefix(name, prefix)
}

// List returns every entry ReadVerbose parses from the (decompressed)
// archive; it serves every listing level, and archive/tar is not used.
func (h *Handler) List() ([]TarEntry, error) {
	return h.load()
}
