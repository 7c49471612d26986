package ziparch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

func mustOpen(t *testing.T, path string, mode OpenMode, orphans bool) *ExtZip {
	t.Helper()
	z, err := Open(path, mode, orphans)
	if err != nil {
		t.Fatalf("Open(%q): %v", path, err)
	}
	return z
}

func TestAddThenListAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.zip")
	z := mustOpen(t, path, ModeWrite, false)

	if err := z.Add(AddRequest{Path: "hello.txt", Content: []byte("hello world")}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	z2 := mustOpen(t, path, ModeRead, false)
	names := z2.NameList()
	if len(names) != 1 || names[0] != "hello.txt" {
		t.Fatalf("NameList() = %v, want [hello.txt]", names)
	}

	entry, ok := z2.GetInfo("hello.txt")
	if !ok {
		t.Fatal("GetInfo(hello.txt) not found")
	}
	content, err := z2.ReadEntryBytes(entry)
	if err != nil {
		t.Fatalf("ReadEntryBytes: %v", err)
	}
	if string(content) != "hello world" {
		t.Errorf("content = %q, want %q", content, "hello world")
	}
}

func TestInvariantLFHAndEOCDOffsetsAgree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inv.zip")
	z := mustOpen(t, path, ModeWrite, false)
	for _, name := range []string{"a", "b", "c"} {
		if err := z.Add(AddRequest{Path: name, Content: []byte(name + name)}); err != nil {
			t.Fatalf("Add(%q): %v", name, err)
		}
	}

	z2 := mustOpen(t, path, ModeRead, false)
	if z2.eocd == nil {
		t.Fatal("no EOCD found")
	}
	if int(z2.eocd.CDOffset) != int(z2.mainCD[0].Offset) {
		t.Errorf("EOCD.CDOffset = %d, want offset of first CDH %d", z2.eocd.CDOffset, z2.mainCD[0].Offset)
	}
	for _, cdh := range z2.mainCD {
		lfh, ok := z2.FindLFH(int64(cdh.Raw.LFHOffset))
		if !ok {
			t.Errorf("CDH %q claims LFH offset %d, none found", cdh.Filename, cdh.Raw.LFHOffset)
			continue
		}
		if lfh.Offset != int64(cdh.Raw.LFHOffset) {
			t.Errorf("LFH offset mismatch for %q", cdh.Filename)
		}
	}
}

func TestModifyPreservesContentWhenNotConvertingType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.zip")
	z := mustOpen(t, path, ModeWrite, false)
	if err := z.Add(AddRequest{Path: "f", Content: []byte("payload")}); err != nil {
		t.Fatal(err)
	}

	mode := uint32(0o600)
	if err := z.Modify("f", archcodec.EntryAttributes{Mode: &mode}); err != nil {
		t.Fatalf("Modify: %v", err)
	}

	z2 := mustOpen(t, path, ModeRead, false)
	entry, _ := z2.GetInfo("f")
	content, err := z2.ReadEntryBytes(entry)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "payload" {
		t.Errorf("content after Modify = %q, want %q", content, "payload")
	}
	gotMode := (entry.ExternalAttr >> 16) & 0o7777
	if gotMode != mode {
		t.Errorf("mode after Modify = %o, want %o", gotMode, mode)
	}
}

func TestModifyToSymlink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.zip")
	z := mustOpen(t, path, ModeWrite, false)
	if err := z.Add(AddRequest{Path: "f", Content: []byte("payload")}); err != nil {
		t.Fatal(err)
	}
	if err := z.Modify("f", archcodec.EntryAttributes{Symlink: "/etc/shadow"}); err != nil {
		t.Fatalf("Modify: %v", err)
	}

	z2 := mustOpen(t, path, ModeRead, false)
	entry, _ := z2.GetInfo("f")
	if (entry.ExternalAttr>>16)&archcodec.TypeMask != archcodec.TypeLink {
		t.Errorf("type bits after symlink conversion = %o, want TypeLink", (entry.ExternalAttr>>16)&archcodec.TypeMask)
	}
	content, err := z2.ReadEntryBytes(entry)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "/etc/shadow" {
		t.Errorf("symlink payload = %q, want /etc/shadow", content)
	}
}

func TestRemoveIsIdempotentAndRecursive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.zip")
	z := mustOpen(t, path, ModeWrite, false)
	for _, name := range []string{"a/", "a/b", "a/c/d", "z"} {
		if err := z.Add(AddRequest{Path: name, Content: []byte("x")}); err != nil {
			t.Fatalf("Add(%q): %v", name, err)
		}
	}

	n, err := z.Remove("a", true)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n != 3 {
		t.Errorf("Remove(a, recursive) removed %d entries, want 3", n)
	}

	z2 := mustOpen(t, path, ModeRead, false)
	names := z2.NameList()
	if len(names) != 1 || names[0] != "z" {
		t.Fatalf("NameList() after recursive remove = %v, want [z]", names)
	}

	if _, err := z2.Remove("a", true); !archerr.Is(err, archerr.EntryNotFound) {
		t.Errorf("second Remove(a) error = %v, want EntryNotFound", err)
	}
}

func TestRemoveNonRecursiveExactMatchOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r2.zip")
	z := mustOpen(t, path, ModeWrite, false)
	for _, name := range []string{"a/", "a/b"} {
		if err := z.Add(AddRequest{Path: name, Content: []byte("x")}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := z.Remove("a/", false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("non-recursive Remove removed %d, want 1", n)
	}
	z2 := mustOpen(t, path, ModeRead, false)
	names := z2.NameList()
	if len(names) != 1 || names[0] != "a/b" {
		t.Fatalf("NameList() = %v, want [a/b]", names)
	}
}

func TestUnicodePathOverrideCRCCoversMainFilenameNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "u.zip")
	z := mustOpen(t, path, ModeWrite, false)
	override := "../../evil"
	if err := z.Add(AddRequest{
		Path:    "file.txt",
		Content: []byte("X"),
		Attrs:   archcodec.EntryAttributes{UnicodePathOverride: &override},
	}); err != nil {
		t.Fatal(err)
	}

	z2 := mustOpen(t, path, ModeRead, false)
	entry, _ := z2.GetInfo("file.txt")
	if entry.UnicodePath != override {
		t.Fatalf("UnicodePath = %q, want %q", entry.UnicodePath, override)
	}

	records := parseExtraRecords(entry.Extra)
	var found bool
	for _, r := range records {
		if r.ID != ExtraIDUnicodePath {
			continue
		}
		found = true
		crc, err := archcodec.ReadU32LE(r.Data, 1)
		if err != nil {
			t.Fatalf("reading CRC from unicode path field: %v", err)
		}
		want := archcodec.CRC32IEEE([]byte("file.txt"))
		if crc != want {
			t.Errorf("unicode path CRC = %x, want CRC of main filename %x", crc, want)
		}
	}
	if !found {
		t.Fatal("0x7075 extra record not found")
	}
}

func TestAppendConcatenatesPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ap.zip")
	z := mustOpen(t, path, ModeWrite, false)
	if err := z.Add(AddRequest{Path: "f", Content: []byte("abc")}); err != nil {
		t.Fatal(err)
	}
	if err := z.Append("f", []byte("def")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	z2 := mustOpen(t, path, ModeRead, false)
	entry, _ := z2.GetInfo("f")
	content, err := z2.ReadEntryBytes(entry)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "abcdef" {
		t.Errorf("content = %q, want abcdef", content)
	}
}

func TestEmptyArchiveListingAndEntryNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	z := mustOpen(t, path, ModeWrite, false)
	if err := z.rewrite(nil); err != nil {
		t.Fatal(err)
	}

	z2 := mustOpen(t, path, ModeRead, false)
	if len(z2.NameList()) != 0 {
		t.Errorf("NameList() on empty archive = %v, want empty", z2.NameList())
	}
	if _, ok := z2.GetInfo("anything"); ok {
		t.Error("GetInfo on empty archive unexpectedly found an entry")
	}
}

func TestSetPermissionsDefaults(t *testing.T) {
	attr := SetPermissions(nil, true, false, false, archcodec.EntryAttributes{})
	mode := (attr >> 16) & 0o170000
	if mode != archcodec.TypeDir {
		t.Errorf("directory type bits = %o, want TypeDir", mode)
	}
	if attr&0xFF != dosAttrDirectory {
		t.Errorf("dos_attr = %x, want DOS_DIRECTORY", attr&0xFF)
	}
}

func TestFormatModeSetuidSticky(t *testing.T) {
	mode := archcodec.ApplySpecialBits(0o755, true, false, true)
	got := archcodec.FormatMode(archcodec.TypeReg | mode)
	if got[3] != 's' {
		t.Errorf("FormatMode(%o) = %q, want setuid s in user-exec column", mode, got)
	}
	if got[9] != 't' {
		t.Errorf("FormatMode(%o) = %q, want sticky t in other-exec column", mode, got)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2020, time.March, 14, 9, 26, 54, 0, time.UTC)
	date, timeField := archcodec.TimeToDOS(in)
	out := archcodec.DOSToTime(date, timeField)
	if !out.Equal(in) {
		t.Errorf("DOSToTime(TimeToDOS(%v)) = %v", in, out)
	}
}

func TestReadNonexistentArchiveIsInputMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.zip"), ModeRead, false)
	if !archerr.Is(err, archerr.InputMissing) {
		t.Errorf("Open(missing, ModeRead) error = %v, want InputMissing", err)
	}
}

func TestOpenForWriteCreatesWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.zip")
	z, err := Open(path, ModeWrite, false)
	if err != nil {
		t.Fatalf("Open(missing, ModeWrite): %v", err)
	}
	if err := z.Add(AddRequest{Path: "f", Content: []byte("x")}); err != nil {
		t.Fatalf("Add on freshly-created archive: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("archive file not created: %v", err)
	}
}
