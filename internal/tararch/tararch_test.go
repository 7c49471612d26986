package tararch

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
)

func TestOctalRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, 8, 511, 0o4777, 07777777} {
		field := formatOctalField(v, lenMode)
		got := parseOctalField(field)
		if got != v {
			t.Errorf("parseOctalField(formatOctalField(%o)) = %o, want %o", v, got, v)
		}
	}
}

// TestHeaderBlockRoundTrip diffs a full RawTarHeader against the block it
// produces and is reparsed from. Chksum is excluded: writeHeaderBlock always
// recomputes it over the freshly serialized block, so it never round-trips
// an arbitrary input value the way every other field does.
func TestHeaderBlockRoundTrip(t *testing.T) {
	cases := []RawTarHeader{
		{
			Name: "hello.txt", Mode: 0o644, UID: 1000, GID: 1000,
			Size: 11, MTime: 1700000000, TypeFlag: TypeRegular,
			Magic: ustarMagic, Version: ustarVersion,
			UName: "alice", GName: "staff",
		},
		{
			Name: "dir/", Mode: 0o755, UID: 0, GID: 0,
			TypeFlag: TypeDirectory,
			Magic:    ustarMagic, Version: ustarVersion,
			Prefix: "some/long/prefix",
		},
		{
			Name: "dev", Mode: 0o666, TypeFlag: TypeCharDevice,
			Magic: ustarMagic, Version: ustarVersion,
			DevMajor: 5, DevMinor: 1,
		},
	}

	for _, in := range cases {
		block := writeHeaderBlock(in)
		out := parseHeaderBlock(block)
		if diff := cmp.Diff(in, out, cmpopts.IgnoreFields(RawTarHeader{}, "Chksum")); diff != "" {
			t.Errorf("parseHeaderBlock(writeHeaderBlock(%q)) mismatch (-want +got):\n%s", in.Name, diff)
		}
	}
}

func TestAddThenList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.tar")
	h := &Handler{Path: path}

	if err := h.Add(AddRequest{Path: "hello.txt", Content: []byte("hello world")}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries, err := h.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].DisplayName() != "hello.txt" {
		t.Fatalf("List() = %+v, want one entry hello.txt", entries)
	}
	if string(entries[0].Payload) != "hello world" {
		t.Errorf("payload = %q, want %q", entries[0].Payload, "hello world")
	}
	if entries[0].Header.Mode != defaultAddMode {
		t.Errorf("mode = %o, want default %o", entries[0].Header.Mode, defaultAddMode)
	}
}

// TestSetuidSymlink checks that add x.tar --path s --symlink /etc/shadow
// --mode 04777 produces typeflag '2', linkname /etc/shadow, mode 04777.
func TestSetuidSymlink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.tar")
	h := &Handler{Path: path}

	mode := uint32(0o777)
	if err := h.Add(AddRequest{
		Path: "s",
		Attrs: archcodec.EntryAttributes{
			Mode:    &mode,
			SetUID:  true,
			Symlink: "/etc/shadow",
		},
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries, err := h.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Header.TypeFlag != TypeSymlink {
		t.Errorf("typeflag = %q, want '2'", e.Header.TypeFlag)
	}
	if e.Header.LinkName != "/etc/shadow" {
		t.Errorf("linkname = %q, want /etc/shadow", e.Header.LinkName)
	}
	if e.Header.Mode != 0o4777 {
		t.Errorf("mode = %o, want 04777", e.Header.Mode)
	}
	if e.Header.Size != 0 {
		t.Errorf("size = %d, want 0", e.Header.Size)
	}
}

func TestRemoveRecursive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.tar")
	h := &Handler{Path: path}
	for _, name := range []string{"a/", "a/b", "a/c/d", "z"} {
		if err := h.Add(AddRequest{Path: name, Content: []byte("x")}); err != nil {
			t.Fatalf("Add(%q): %v", name, err)
		}
	}

	n, err := h.Remove("a", true)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n != 3 {
		t.Errorf("Remove(a, recursive) removed %d, want 3", n)
	}

	entries, err := h.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].DisplayName() != "z" {
		t.Fatalf("List() after recursive remove = %+v, want [z]", entries)
	}
}

func TestLongNameRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ln.tar")
	h := &Handler{Path: path}
	longName := "a/very/deeply/nested/path/that/is/longer/than/the/one/hundred/byte/ustar/name/field/can/hold/directly.txt"
	if len(longName) <= longNameThreshold {
		t.Fatalf("test fixture name too short: %d", len(longName))
	}
	if err := h.Add(AddRequest{Path: longName, Content: []byte("payload")}); err != nil {
		t.Fatal(err)
	}

	entries, err := h.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].DisplayName() != longName {
		t.Errorf("DisplayName() = %q, want %q", entries[0].DisplayName(), longName)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.tar.gz")
	h := &Handler{Path: path, Compression: Gzip}
	if err := h.Add(AddRequest{Path: "f", Content: []byte("compressed payload")}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	entries, err := h.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || string(entries[0].Payload) != "compressed payload" {
		t.Fatalf("entries = %+v, want one entry with the original payload", entries)
	}
}

func TestAppendToCompressedIsFullRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.tar.gz")
	h := &Handler{Path: path, Compression: Gzip}
	if err := h.Add(AddRequest{Path: "f", Content: []byte("abc")}); err != nil {
		t.Fatal(err)
	}
	if err := h.Append("f", []byte("def")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	entries, err := h.List()
	if err != nil {
		t.Fatal(err)
	}
	if string(entries[0].Payload) != "abcdef" {
		t.Errorf("payload after Append = %q, want abcdef", entries[0].Payload)
	}
}

func TestTwoZeroBlocksTerminate(t *testing.T) {
	one := newBuildEntry("a", []byte("x"), archcodec.EntryAttributes{})
	data := serializeArchive([]buildEntry{one})
	// append garbage after the terminator; ReadVerbose must not see it
	data = append(data, bytes.Repeat([]byte{1}, blockSize)...)

	entries, err := ReadVerbose(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (trailing garbage after terminator must be ignored)", len(entries))
	}
}
