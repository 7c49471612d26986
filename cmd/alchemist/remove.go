package main

import (
	"fmt"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/applog"
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// runRemove implements `remove|rm <path> [--recursive 0|1]`.
func runRemove(env *commandEnv, args []string) error {
	if len(args) < 1 {
		return archerr.New(archerr.BadContentSpec, "remove", "", fmt.Errorf("missing entry path"))
	}
	path := args[0]
	recursive := env.c.Int("recursive") != 0

	var n int
	var err error
	if env.isZip() {
		n, err = env.zip.Remove(path, recursive)
	} else {
		n, err = env.tar.Remove(path, recursive)
	}
	if err != nil {
		return err
	}
	applog.Info("removed entries", "count", n, "path", path)
	return nil
}
