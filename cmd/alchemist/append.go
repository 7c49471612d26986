package main

import (
	"fmt"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// runAppend implements `append <path> (--content|--content-file)`.
func runAppend(env *commandEnv, args []string) error {
	if len(args) < 1 {
		return archerr.New(archerr.BadContentSpec, "append", "", fmt.Errorf("missing entry path"))
	}
	path := args[0]

	content, err := contentFromFlags(env.c, true)
	if err != nil {
		return err
	}

	if env.isZip() {
		return env.zip.Append(path, content)
	}
	return env.tar.Append(path, content)
}
