package main

import (
	"fmt"
	"time"

	"github.com/rodaine/table"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/ziparch"
)

// runList implements `list|ls [--long 0|1|2 | --longlong]`, rendering a
// plain name list at --long 0 (the default) and a rodaine/table grid at
// higher detail levels — grounded on go-dictzip/cmd/dictzip/list.go, which
// renders its own chunk table the same way.
func runList(env *commandEnv, _ []string) error {
	level := env.c.Int("long")
	if env.c.Bool("longlong") {
		level = 2
	}

	if env.isZip() {
		return listZip(env, level)
	}
	return listTar(env, level)
}

func listZip(env *commandEnv, level int) error {
	entries, err := env.zip.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("empty")
		return nil
	}

	if level == 0 {
		for _, e := range entries {
			fmt.Println(zipDisplayLine(e))
		}
		return nil
	}

	if level == 1 {
		tbl := table.New("name", "size", "mode")
		for _, e := range entries {
			mode := (e.ExternalAttr >> 16) & 0o7777
			tbl.AddRow(zipDisplayLine(e), e.UncompressedSize, fmt.Sprintf("%04o", mode))
		}
		tbl.Print()
		return nil
	}

	tbl := table.New("name", "size", "mode", "crc32", "status")
	for _, e := range entries {
		mode := archcodec.FormatMode((e.ExternalAttr >> 16))
		tbl.AddRow(zipDisplayLine(e), e.UncompressedSize, mode, fmt.Sprintf("%08x", e.CRC32), e.Status.String())
	}
	tbl.Print()
	return nil
}

// zipDisplayLine formats an entry as a plain name, with "(unicode: X)"
// appended when the 0x7075 Unicode Path disagrees with the stored name.
func zipDisplayLine(e ziparch.ExtendedEntry) string {
	name := e.LFHFilename
	if name == "" {
		name = e.CDHFilename
	}
	if e.UnicodePath != "" && e.UnicodePath != name {
		return fmt.Sprintf("%s (unicode: %s)", name, e.UnicodePath)
	}
	return name
}

func listTar(env *commandEnv, level int) error {
	entries, err := env.tar.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("empty")
		return nil
	}

	if level == 0 {
		for _, e := range entries {
			fmt.Println(e.DisplayName())
		}
		return nil
	}

	if level == 1 {
		tbl := table.New("name", "size", "mode")
		for _, e := range entries {
			tbl.AddRow(e.DisplayName(), e.Header.Size, fmt.Sprintf("%04o", e.Header.Mode))
		}
		tbl.Print()
		return nil
	}

	tbl := table.New("name", "size", "mode", "uid", "gid", "mtime", "type", "linkname")
	for _, e := range entries {
		tbl.AddRow(
			e.DisplayName(),
			e.Header.Size,
			fmt.Sprintf("%04o", e.Header.Mode),
			e.Header.UID,
			e.Header.GID,
			time.Unix(e.Header.MTime, 0).UTC().Format(time.RFC3339),
			string(e.Header.TypeFlag),
			e.Header.LinkName,
		)
	}
	tbl.Print()
	return nil
}
