package main

import (
	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// runPolyglot implements `polyglot (--content|--content-file)` (zip only).
func runPolyglot(env *commandEnv, _ []string) error {
	if !env.isZip() {
		return archerr.New(archerr.UnsupportedOp, "polyglot", env.archivePath, nil)
	}
	prefix, err := contentFromFlags(env.c, true)
	if err != nil {
		return err
	}
	return env.zip.Polyglot(prefix)
}
