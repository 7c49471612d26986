package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/alchemist"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archcodec"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// commandEnv bundles the per-invocation state every subcommand needs: the
// detected archive type and a ready-to-use handler for it.
type commandEnv struct {
	c           *cli.Context
	archivePath string
	archiveType alchemist.ArchiveType
	zip         *alchemist.ZipHandler
	tar         *alchemist.TarHandler
}

func newCommandEnv(c *cli.Context, archivePath string) (*commandEnv, error) {
	t, err := alchemist.DetectArchiveType(archivePath, c.String("t"))
	if err != nil {
		return nil, err
	}
	env := &commandEnv{c: c, archivePath: archivePath, archiveType: t}
	if t == alchemist.TypeZip {
		env.zip = &alchemist.ZipHandler{Path: archivePath, IncludeOrphans: c.Bool("fo")}
	} else {
		env.tar = &alchemist.TarHandler{Path: archivePath, Compression: t.Compression()}
	}
	return env, nil
}

func (e *commandEnv) isZip() bool { return e.zip != nil }

// attrsFromFlags builds archcodec.EntryAttributes from the global flag
// set shared by add/replace/modify.
func attrsFromFlags(c *cli.Context, isZip bool) (archcodec.EntryAttributes, error) {
	var attrs archcodec.EntryAttributes

	mode, err := parseOctalMode(c.String("mode"))
	if err != nil {
		return attrs, err
	}
	attrs.Mode = mode

	if c.IsSet("uid") {
		uid := c.Int64("uid")
		attrs.UID = &uid
	}
	if c.IsSet("gid") {
		gid := c.Int64("gid")
		attrs.GID = &gid
	}
	if c.IsSet("mtime") {
		t := time.Unix(c.Int64("mtime"), 0).UTC()
		attrs.MTime = &t
	}
	attrs.SetUID = c.Bool("setuid")
	attrs.SetGID = c.Bool("setgid")
	attrs.Sticky = c.Bool("sticky")
	attrs.Symlink = c.String("symlink")
	attrs.Hardlink = c.String("hardlink")

	if c.IsSet("unicodepath") {
		if !isZip {
			return attrs, archerr.New(archerr.UnsupportedOp, "alchemist.attrsFromFlags", "--unicodepath", nil)
		}
		u := c.String("unicodepath")
		attrs.UnicodePathOverride = &u
	}

	return attrs, nil
}

// contentFromFlags resolves --content/--content-file, returning
// BadContentSpec when both or neither are set but one is required.
func contentFromFlags(c *cli.Context, required bool) ([]byte, error) {
	spec := alchemist.ContentSpec{}
	if c.IsSet("content") {
		v := c.String("content")
		spec.Content = &v
	}
	if c.IsSet("content-file") {
		v := c.String("content-file")
		spec.ContentFile = &v
	}
	return alchemist.ResolveContent(spec, required)
}
