package archcodec

import "time"

// EntryAttributes is the typed replacement for the source tool's free-form
// Args bag: every add/replace/modify operation, ZIP or TAR, threads one of
// these instead of hopping string-keyed fields off an untyped namespace.
type EntryAttributes struct {
	Mode   *uint32
	UID    *int64
	GID    *int64
	MTime  *time.Time
	SetUID bool
	SetGID bool
	Sticky bool

	// Symlink/Hardlink hold the link target; both empty means a regular
	// file or directory entry.
	Symlink  string
	Hardlink string

	// UnicodePathOverride, when non-nil, is the ZIP Unicode Path (0x7075)
	// value to store; it may legitimately disagree with the main
	// filename, which is the attack primitive this override enables.
	UnicodePathOverride *string
}

// ModeOrDefault returns the caller-supplied mode, or def if none was set.
func (a EntryAttributes) ModeOrDefault(def uint32) uint32 {
	if a.Mode != nil {
		return *a.Mode
	}
	return def
}

// HasLink reports whether the attributes request a symlink or hardlink
// conversion.
func (a EntryAttributes) HasLink() bool {
	return a.Symlink != "" || a.Hardlink != ""
}
