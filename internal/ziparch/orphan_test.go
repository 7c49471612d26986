package ziparch

import (
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
)

// buildOrphanedFixture is a direct Go port of generate_orphaned_fh.py's
// create_complex_orphaned_zip: a normal.txt/normal2.txt pair reachable
// from the main central directory, an orphaned_alone.txt LFH with no CDH
// anywhere, an orphaned_with_cdh.txt LFH whose only CDH is hidden inside
// the EOCD comment, and a CDH-only "nonexistent.txt" also hidden in that
// comment, pointing at an LFH offset that does not exist.
func buildOrphanedFixture() []byte {
	lfh := func(name, content string) []byte {
		nameB := []byte(name)
		contentB := []byte(content)
		out := make([]byte, lfhFixedSize+len(nameB)+len(contentB))
		binary.LittleEndian.PutUint32(out[0:], 0x04034b50)
		binary.LittleEndian.PutUint16(out[4:], 20)
		binary.LittleEndian.PutUint16(out[6:], 0)
		binary.LittleEndian.PutUint16(out[8:], 0)
		binary.LittleEndian.PutUint16(out[10:], 0)
		binary.LittleEndian.PutUint16(out[12:], 0)
		binary.LittleEndian.PutUint32(out[14:], crc32.ChecksumIEEE(contentB))
		binary.LittleEndian.PutUint32(out[18:], uint32(len(contentB)))
		binary.LittleEndian.PutUint32(out[22:], uint32(len(contentB)))
		binary.LittleEndian.PutUint16(out[26:], uint16(len(nameB)))
		binary.LittleEndian.PutUint16(out[28:], 0)
		copy(out[lfhFixedSize:], nameB)
		copy(out[lfhFixedSize+len(nameB):], contentB)
		return out
	}

	cdh := func(name, content string, lfhOffset uint32) []byte {
		nameB := []byte(name)
		contentB := []byte(content)
		out := make([]byte, cdhFixedSize+len(nameB))
		binary.LittleEndian.PutUint32(out[0:], 0x02014b50)
		binary.LittleEndian.PutUint16(out[4:], 20)
		binary.LittleEndian.PutUint16(out[6:], 20)
		binary.LittleEndian.PutUint16(out[8:], 0)
		binary.LittleEndian.PutUint16(out[10:], 0)
		binary.LittleEndian.PutUint16(out[12:], 1000)
		binary.LittleEndian.PutUint16(out[14:], 1000)
		binary.LittleEndian.PutUint32(out[16:], crc32.ChecksumIEEE(contentB))
		binary.LittleEndian.PutUint32(out[20:], uint32(len(contentB)))
		binary.LittleEndian.PutUint32(out[24:], uint32(len(contentB)))
		binary.LittleEndian.PutUint16(out[28:], uint16(len(nameB)))
		binary.LittleEndian.PutUint16(out[30:], 0)
		binary.LittleEndian.PutUint16(out[32:], 0)
		binary.LittleEndian.PutUint16(out[34:], 0)
		binary.LittleEndian.PutUint16(out[36:], 0)
		binary.LittleEndian.PutUint32(out[38:], 0x81800000)
		binary.LittleEndian.PutUint32(out[42:], lfhOffset)
		copy(out[cdhFixedSize:], nameB)
		return out
	}

	eocd := func(cdOffset, cdSize uint32, entryCount uint16, comment []byte) []byte {
		out := make([]byte, eocdFixedSize+len(comment))
		binary.LittleEndian.PutUint32(out[0:], 0x06054b50)
		binary.LittleEndian.PutUint16(out[4:], 0)
		binary.LittleEndian.PutUint16(out[6:], 0)
		binary.LittleEndian.PutUint16(out[8:], entryCount)
		binary.LittleEndian.PutUint16(out[10:], entryCount)
		binary.LittleEndian.PutUint32(out[12:], cdSize)
		binary.LittleEndian.PutUint32(out[16:], cdOffset)
		binary.LittleEndian.PutUint16(out[20:], uint16(len(comment)))
		copy(out[eocdFixedSize:], comment)
		return out
	}

	var zipData []byte
	type mainEntry struct {
		name, content string
		offset        uint32
	}
	var mainEntries []mainEntry

	offset1 := uint32(len(zipData))
	zipData = append(zipData, lfh("normal.txt", "This is a normal file with LFH and CDH")...)
	mainEntries = append(mainEntries, mainEntry{"normal.txt", "This is a normal file with LFH and CDH", offset1})

	zipData = append(zipData, lfh("orphaned_alone.txt", "This LFH has no CDH anywhere!")...)

	offset3 := uint32(len(zipData))
	zipData = append(zipData, lfh("orphaned_with_cdh.txt", "This LFH has a CDH but CDH is in EOCD comment")...)

	offset4 := uint32(len(zipData))
	zipData = append(zipData, lfh("normal2.txt", "Second normal file")...)
	mainEntries = append(mainEntries, mainEntry{"normal2.txt", "Second normal file", offset4})

	mainCDOffset := uint32(len(zipData))
	var mainCDData []byte
	for _, e := range mainEntries {
		mainCDData = append(mainCDData, cdh(e.name, e.content, e.offset)...)
	}
	zipData = append(zipData, mainCDData...)

	var orphanedCDData []byte
	orphanedCDData = append(orphanedCDData, cdh("orphaned_with_cdh.txt", "This LFH has a CDH but CDH is in EOCD comment", offset3)...)
	orphanedCDData = append(orphanedCDData, cdh("nonexistent.txt", "This CDH points to nowhere", 0x99999999)...)

	eocdComment := append([]byte("Hidden CDHs: "), orphanedCDData...)
	zipData = append(zipData, eocd(mainCDOffset, uint32(len(mainCDData)), uint16(len(mainEntries)), eocdComment)...)

	return zipData
}

func TestOrphanDetection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orphaned.zip")
	if err := os.WriteFile(path, buildOrphanedFixture(), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("without orphan mode only normal entries appear", func(t *testing.T) {
		z, err := Open(path, ModeRead, false)
		if err != nil {
			t.Fatal(err)
		}
		names := z.NameList()
		if len(names) != 2 {
			t.Fatalf("got %d names, want 2: %v", len(names), names)
		}
		want := map[string]bool{"normal.txt": true, "normal2.txt": true}
		for _, n := range names {
			if !want[n] {
				t.Errorf("unexpected name in non-orphan listing: %q", n)
			}
		}
	})

	t.Run("with orphan mode all four plus the hidden CDH-only entry appear", func(t *testing.T) {
		z, err := Open(path, ModeRead, true)
		if err != nil {
			t.Fatal(err)
		}
		entries := z.ExtendedEntries()
		byName := map[string]ExtendedEntry{}
		for _, e := range entries {
			name := e.LFHFilename
			if name == "" {
				name = e.CDHFilename
			}
			byName[name] = e
		}

		if _, ok := byName["normal.txt"]; !ok {
			t.Error("missing normal.txt")
		}
		if _, ok := byName["normal2.txt"]; !ok {
			t.Error("missing normal2.txt")
		}
		alone, ok := byName["orphaned_alone.txt"]
		if !ok {
			t.Fatal("missing orphaned_alone.txt")
		}
		if alone.Status != StatusOrphanedLFHOnly {
			t.Errorf("orphaned_alone.txt status = %v, want StatusOrphanedLFHOnly", alone.Status)
		}

		withCDH, ok := byName["orphaned_with_cdh.txt"]
		if !ok {
			t.Fatal("missing orphaned_with_cdh.txt")
		}
		if withCDH.Status != StatusOrphanedLFHWithHiddenCDH {
			t.Errorf("orphaned_with_cdh.txt status = %v, want StatusOrphanedLFHWithHiddenCDH", withCDH.Status)
		}

		nonexistent, ok := byName["nonexistent.txt"]
		if !ok {
			t.Fatal("missing nonexistent.txt (CDH hidden in EOCD comment, pointing nowhere)")
		}
		if nonexistent.Status != StatusOrphanedCDHOnly {
			t.Errorf("nonexistent.txt status = %v, want StatusOrphanedCDHOnly", nonexistent.Status)
		}

		if len(entries) != 5 {
			t.Errorf("got %d entries, want 5: %+v", len(entries), byName)
		}
	})
}
