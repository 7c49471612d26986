package main

import (
	"fmt"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// runReplace implements `replace <path> ...(superset of add)...`.
func runReplace(env *commandEnv, args []string) error {
	if len(args) < 1 {
		return archerr.New(archerr.BadContentSpec, "replace", "", fmt.Errorf("missing entry path"))
	}
	path := args[0]
	c := env.c

	attrs, err := attrsFromFlags(c, env.isZip())
	if err != nil {
		return err
	}
	content, err := contentFromFlags(c, !attrs.HasLink())
	if err != nil {
		return err
	}

	if env.isZip() {
		return env.zip.Replace(path, content, attrs)
	}
	return env.tar.Replace(path, content, attrs)
}
