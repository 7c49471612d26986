package main

import (
	"fmt"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/alchemist"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// runAdd implements `add <path> [--content|--content-file|--content-directory] ...`.
func runAdd(env *commandEnv, args []string) error {
	if len(args) < 1 {
		return archerr.New(archerr.BadContentSpec, "add", "", fmt.Errorf("missing entry path"))
	}
	path := args[0]
	c := env.c

	attrs, err := attrsFromFlags(c, env.isZip())
	if err != nil {
		return err
	}

	var dirEntries []alchemist.DirEntry
	var content []byte
	if c.IsSet("content-directory") {
		dirEntries, err = alchemist.WalkContentDirectory(c.String("content-directory"), path)
		if err != nil {
			return err
		}
	} else {
		content, err = contentFromFlags(c, !attrs.HasLink())
		if err != nil {
			return err
		}
	}

	if env.isZip() {
		return env.zip.Add(path, content, attrs, dirEntries)
	}
	return env.tar.Add(path, content, attrs, dirEntries)
}
