package main

import (
	"github.com/avlidienbrunn/archive-alchemist-go/internal/alchemist"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/tararch"
)

// runExtract implements `extract [--path P] [-o DIR] [--vulnerable] [--normalize-permissions]`.
func runExtract(env *commandEnv, _ []string) error {
	c := env.c
	only := c.String("path")
	outDir := c.String("o")
	vulnerable := c.Bool("vulnerable")
	normalize := c.Bool("normalize-permissions")

	if env.isZip() {
		return extractZip(env, only, outDir, vulnerable, normalize)
	}
	return extractTar(env, only, outDir, vulnerable, normalize)
}

func extractZip(env *commandEnv, only, outDir string, vulnerable, normalize bool) error {
	entries, err := env.zip.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.LFHFilename
		if name == "" {
			name = e.CDHFilename
		}
		if only != "" && name != only {
			continue
		}
		content, err := env.zip.ReadByEntry(e)
		if err != nil {
			return err
		}
		mode := (e.ExternalAttr >> 16) & 0o7777
		typeBits := (e.ExternalAttr >> 16) & archcodec.TypeMask
		linkKind := alchemist.LinkNone
		if typeBits == archcodec.TypeLink {
			linkKind = alchemist.LinkSymlink
		}
		if err := alchemist.ExtractFile(outDir, name, content, mode, linkKind, string(content), vulnerable, normalize); err != nil {
			return err
		}
	}
	return nil
}

func extractTar(env *commandEnv, only, outDir string, vulnerable, normalize bool) error {
	entries, err := env.tar.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.DisplayName()
		if only != "" && name != only {
			continue
		}
		linkKind := alchemist.LinkNone
		switch e.Header.TypeFlag {
		case tararch.TypeSymlink:
			linkKind = alchemist.LinkSymlink
		case tararch.TypeHardLink:
			linkKind = alchemist.LinkHardlink
		}
		if err := alchemist.ExtractFile(outDir, name, e.Payload, uint32(e.Header.Mode), linkKind, e.Header.LinkName, vulnerable, normalize); err != nil {
			return err
		}
	}
	return nil
}
