package main

import (
	"fmt"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// runModify implements `modify <path> [--mode|--uid|--gid|--mtime|--setuid|--setgid|--sticky|--symlink|--hardlink|--unicodepath]`.
func runModify(env *commandEnv, args []string) error {
	if len(args) < 1 {
		return archerr.New(archerr.BadContentSpec, "modify", "", fmt.Errorf("missing entry path"))
	}
	path := args[0]

	attrs, err := attrsFromFlags(env.c, env.isZip())
	if err != nil {
		return err
	}

	if env.isZip() {
		return env.zip.Modify(path, attrs)
	}
	return env.tar.Modify(path, attrs)
}
