package ziparch

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestPolyglotShiftsOffsetsButPreservesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.zip")
	z := mustOpen(t, path, ModeWrite, false)
	if err := z.Add(AddRequest{Path: "one.txt", Content: []byte("111")}); err != nil {
		t.Fatal(err)
	}
	if err := z.Add(AddRequest{Path: "two.txt", Content: []byte("222222")}); err != nil {
		t.Fatal(err)
	}

	before := mustOpen(t, path, ModeRead, false)
	beforeEOCD := before.eocd.CDOffset
	beforeLFHOffsets := map[string]uint32{}
	for _, cdh := range before.mainCD {
		beforeLFHOffsets[cdh.Filename] = cdh.Raw.LFHOffset
	}

	prefix := bytes.Repeat([]byte("A"), 100)
	if err := Polyglot(path, prefix); err != nil {
		t.Fatalf("Polyglot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, prefix) {
		t.Fatal("result does not start with the prepended prefix")
	}

	after := mustOpen(t, path, ModeRead, false)
	if after.eocd.CDOffset != beforeEOCD+uint32(len(prefix)) {
		t.Errorf("EOCD.CDOffset after polyglot = %d, want %d", after.eocd.CDOffset, beforeEOCD+uint32(len(prefix)))
	}
	for _, cdh := range after.mainCD {
		want, ok := beforeLFHOffsets[cdh.Filename]
		if !ok {
			t.Fatalf("unexpected entry %q after polyglot", cdh.Filename)
		}
		if cdh.Raw.LFHOffset != want+uint32(len(prefix)) {
			t.Errorf("%q LFH offset after polyglot = %d, want %d", cdh.Filename, cdh.Raw.LFHOffset, want+uint32(len(prefix)))
		}
	}

	names := after.NameList()
	if len(names) != 2 {
		t.Fatalf("NameList() after polyglot = %v, want 2 entries", names)
	}
	for _, e := range after.ExtendedEntries() {
		content, err := after.ReadEntryBytes(e)
		if err != nil {
			t.Fatalf("ReadEntryBytes(%q) after polyglot: %v", e.CDHFilename, err)
		}
		if len(content) == 0 {
			t.Errorf("entry %q has empty content after polyglot", e.CDHFilename)
		}
	}
}

// TestPolyglotPreservesHiddenCDHsInEOCDComment checks that the
// EOCD comment's bytes are never touched (only the 4-byte cd_offset
// field at the record's fixed offset 16 changes), so a CDH hidden inside that
// comment (as buildOrphanedFixture constructs) is still discoverable by
// the signature sweep after a polyglot rewrite, byte-for-byte, even
// though prepending bytes shifts every *other* stored offset and so can
// change which LFH (if any) that hidden CDH now pairs with.
func TestPolyglotPreservesHiddenCDHsInEOCDComment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hidden.zip")
	if err := os.WriteFile(path, buildOrphanedFixture(), 0o644); err != nil {
		t.Fatal(err)
	}

	before := mustOpen(t, path, ModeRead, true)
	beforeCDHCount := len(before.cdhs)

	if err := Polyglot(path, []byte("GIF89a")); err != nil {
		t.Fatalf("Polyglot: %v", err)
	}

	after := mustOpen(t, path, ModeRead, true)
	if len(after.cdhs) != beforeCDHCount {
		t.Errorf("raw CDH count after polyglot = %d, want %d (hidden CDHs in EOCD comment must survive)",
			len(after.cdhs), beforeCDHCount)
	}

	var foundNonexistent bool
	for _, c := range after.cdhs {
		if c.Filename == "nonexistent.txt" {
			foundNonexistent = true
		}
	}
	if !foundNonexistent {
		t.Error("nonexistent.txt CDH (hidden in EOCD comment) not found after polyglot")
	}
}
