package alchemist

import (
	"os"
	"path/filepath"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// ContentSpec holds the three mutually-exclusive ways a caller can supply
// entry content for the add/replace/append commands.
type ContentSpec struct {
	Content          *string
	ContentFile      *string
	ContentDirectory *string
}

// DirEntry is one file discovered under a ContentDirectory walk, paired
// with the archive-relative path it should be stored under.
type DirEntry struct {
	ArchivePath string
	Content     []byte
	IsDir       bool
}

// ResolveContent implements the contract every zip_handler.py/
// tar_handler.py call site assumes for BaseArchiveHandler.get_content
// (the captured snapshot omits the method body, so this is reconstructed
// from its callers, not copied): exactly one of Content/ContentFile may be
// set when single-entry content is required; supplying both, or neither
// when required, is BadContentSpec.
func ResolveContent(spec ContentSpec, required bool) ([]byte, error) {
	hasContent := spec.Content != nil
	hasFile := spec.ContentFile != nil

	if hasContent && hasFile {
		return nil, archerr.New(archerr.BadContentSpec, "alchemist.ResolveContent", "", nil)
	}
	if hasContent {
		return []byte(*spec.Content), nil
	}
	if hasFile {
		data, err := os.ReadFile(*spec.ContentFile)
		if err != nil {
			return nil, archerr.New(archerr.InputMissing, "alchemist.ResolveContent", *spec.ContentFile, err)
		}
		return data, nil
	}
	if required {
		return nil, archerr.New(archerr.BadContentSpec, "alchemist.ResolveContent", "", nil)
	}
	return nil, nil
}

// WalkContentDirectory resolves --content-directory: every regular file
// and directory under root, each archive path rooted at basePath joined
// with its path relative to root (using forward slashes regardless of
// host OS, since both archive formats are slash-separated).
func WalkContentDirectory(root, basePath string) ([]DirEntry, error) {
	var entries []DirEntry
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		archivePath := filepath.ToSlash(filepath.Join(basePath, rel))
		if info.IsDir() {
			entries = append(entries, DirEntry{ArchivePath: archivePath + "/", IsDir: true})
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		entries = append(entries, DirEntry{ArchivePath: archivePath, Content: data})
		return nil
	})
	if err != nil {
		return nil, archerr.New(archerr.InputMissing, "alchemist.WalkContentDirectory", root, err)
	}
	return entries, nil
}
