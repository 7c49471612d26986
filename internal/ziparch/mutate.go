package ziparch

import (
	"os"
	"strings"
	"time"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// AddRequest describes one entry to author.
type AddRequest struct {
	Path    string
	Content []byte
	Attrs   archcodec.EntryAttributes
}

// Add appends req as a new entry. If path already exists and the caller is
// effectively replacing (AddRequest from a --content-directory walk that
// hit an existing name), the caller should use Replace directly — Add
// always appends a new entry, matching zip_handler.py's add() once the
// content-directory special case has been resolved by the glue layer.
func (z *ExtZip) Add(req AddRequest) error {
	entries, err := z.currentBuildEntries()
	if err != nil {
		return err
	}
	entries = append(entries, newBuildEntry(req))
	return z.rewrite(entries)
}

// Replace removes any existing entry at req.Path and adds req in its place.
func (z *ExtZip) Replace(req AddRequest) error {
	entries, err := z.currentBuildEntries()
	if err != nil {
		return err
	}
	entries = removeBuildEntries(entries, req.Path, true)
	entries = append(entries, newBuildEntry(req))
	return z.rewrite(entries)
}

// Append reads the current payload, concatenates content onto it, and
// rewrites the entry with everything else about it unchanged.
func (z *ExtZip) Append(path string, content []byte) error {
	entry, ok := z.GetInfo(path)
	if !ok {
		return archerr.New(archerr.EntryNotFound, "ziparch.Append", path, nil)
	}
	existing, err := z.ReadEntryBytes(entry)
	if err != nil {
		return err
	}

	entries, err := z.currentBuildEntries()
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].Name == path {
			entries[i].Content = append(append([]byte(nil), existing...), content...)
			break
		}
	}
	return z.rewrite(entries)
}

// Modify rewrites the entry with altered mode/mtime/uid/gid/special-bits/
// type, preserving the existing type unless explicitly converting to
// symlink/hardlink.
func (z *ExtZip) Modify(path string, attrs archcodec.EntryAttributes) error {
	entry, ok := z.GetInfo(path)
	if !ok {
		return archerr.New(archerr.EntryNotFound, "ziparch.Modify", path, nil)
	}
	content, err := z.ReadEntryBytes(entry)
	if err != nil {
		return err
	}

	entries, err := z.currentBuildEntries()
	if err != nil {
		return err
	}

	origAttr := entry.ExternalAttr
	isDir := strings.HasSuffix(path, "/")

	switch {
	case attrs.Symlink != "":
		content = []byte(attrs.Symlink)
	case attrs.Hardlink != "":
		content = []byte(attrs.Hardlink)
	}

	mtime := time.Time{}
	if attrs.MTime != nil {
		mtime = *attrs.MTime
	} else if lfh := z.lfhForEntry(entry); lfh != nil {
		mtime = archcodec.DOSToTime(lfh.Raw.LastModDate, lfh.Raw.LastModTime)
	}

	nameRaw := []byte(path)
	// preserve_type is true for regular-attribute modifications only; a
	// --symlink conversion sets the type bits to 0o120000 and a --hardlink
	// conversion (stored as a regular file) sets them from isDir, regardless
	// of what the entry used to be.
	preserveType := attrs.Symlink == "" && attrs.Hardlink == ""
	externalAttr := SetPermissions(&origAttr, isDir, attrs.Symlink != "", preserveType, attrs)
	extra := buildExtraForAttrs(entry.Extra, nameRaw, mtime, attrs)

	for i := range entries {
		if entries[i].Name == path {
			entries[i] = buildEntry{
				Name:         path,
				Content:      content,
				Mtime:        mtime,
				ExternalAttr: externalAttr,
				Extra:        extra,
				Comment:      entry.Comment,
			}
			break
		}
	}
	return z.rewrite(entries)
}

// Remove drops the named entry, or with recursive=true, the named entry
// plus everything under "name/"; recursive=false restricts to an
// exact match. Removing "" with recursive=true removes everything.
func (z *ExtZip) Remove(path string, recursive bool) (int, error) {
	entries, err := z.currentBuildEntries()
	if err != nil {
		return 0, err
	}
	before := len(entries)
	kept := removeBuildEntries(entries, path, recursive)
	removed := before - len(kept)
	if removed == 0 {
		return 0, archerr.New(archerr.EntryNotFound, "ziparch.Remove", path, nil)
	}
	if err := z.rewrite(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func removeBuildEntries(entries []buildEntry, path string, recursive bool) []buildEntry {
	prefix := strings.TrimSuffix(path, "/") + "/"
	kept := entries[:0:0]
	for _, e := range entries {
		switch {
		case e.Name == path:
			continue
		case recursive && path == "":
			continue
		case recursive && strings.HasPrefix(e.Name, prefix):
			continue
		default:
			kept = append(kept, e)
		}
	}
	return kept
}

func newBuildEntry(req AddRequest) buildEntry {
	content := req.Content
	isDir := strings.HasSuffix(req.Path, "/")
	isSymlink := req.Attrs.Symlink != ""
	if isSymlink {
		content = []byte(req.Attrs.Symlink)
	} else if req.Attrs.Hardlink != "" {
		content = []byte(req.Attrs.Hardlink)
	}

	mtime := time.Now()
	if req.Attrs.MTime != nil {
		mtime = *req.Attrs.MTime
	}

	nameRaw := []byte(req.Path)
	externalAttr := SetPermissions(nil, isDir, isSymlink, false, req.Attrs)
	extra := buildExtraForAttrs(nil, nameRaw, mtime, req.Attrs)

	return buildEntry{
		Name:         req.Path,
		Content:      content,
		Mtime:        mtime,
		ExternalAttr: externalAttr,
		Extra:        extra,
	}
}

// currentBuildEntries materializes every paired entry this ExtZip knows
// about into a rewritable form. Orphaned entries are intentionally
// dropped here, matching zip_handler.py's modify/remove/append, which
// read the archive without orphaned_mode and so never see them — a
// mutation always rewrites from the standard central directory's view.
func (z *ExtZip) currentBuildEntries() ([]buildEntry, error) {
	var out []buildEntry
	for _, e := range z.entries {
		if e.Status != StatusPaired {
			continue
		}
		content, err := z.ReadEntryBytes(e)
		if err != nil {
			return nil, err
		}
		mtime := time.Time{}
		if lfh := z.lfhForEntry(e); lfh != nil {
			mtime = archcodec.DOSToTime(lfh.Raw.LastModDate, lfh.Raw.LastModTime)
		}
		out = append(out, buildEntry{
			Name:         e.CDHFilename,
			Content:      content,
			Mtime:        mtime,
			ExternalAttr: e.ExternalAttr,
			Extra:        e.Extra,
			Comment:      e.Comment,
		})
	}
	return out, nil
}

func (z *ExtZip) lfhForEntry(e ExtendedEntry) *ParsedLFH {
	if e.LFHOffset == nil {
		return nil
	}
	lfh, _ := z.FindLFH(*e.LFHOffset)
	return lfh
}

// rewrite runs the read-build-write-rename cycle every mutation shares:
// serialize entries to path+".tmp", then rename over the original. Any
// failure before rename leaves the original untouched and unlinks the
// temp file.
func (z *ExtZip) rewrite(entries []buildEntry) error {
	data := serializeArchive(entries, nil)
	tmpPath := z.path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		os.Remove(tmpPath)
		return archerr.New(archerr.FormatInvalid, "ziparch.rewrite", z.path, err)
	}
	if err := os.Rename(tmpPath, z.path); err != nil {
		os.Remove(tmpPath)
		return archerr.New(archerr.FormatInvalid, "ziparch.rewrite", z.path, err)
	}

	z.buf = data
	z.signatures = nil
	z.lfhs = nil
	z.cdhs = nil
	z.eocds = nil
	z.eocd = nil
	z.mainCD = nil
	z.entries = nil
	z.scan()
	z.pair()
	return nil
}
