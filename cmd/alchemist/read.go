package main

import (
	"fmt"
	"os"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/archerr"
)

// runRead implements `read|cat <path> [--index N]`. --index disambiguates
// when multiple entries share a display name: a plain lookup by name
// returns the first match, so --index lets a caller reach past it when
// orphan mode surfaces duplicates.
func runRead(env *commandEnv, args []string) error {
	if len(args) < 1 {
		return archerr.New(archerr.BadContentSpec, "read", "", fmt.Errorf("missing entry path"))
	}
	path := args[0]

	var content []byte
	var err error
	if env.isZip() {
		content, err = readZipByIndex(env, path)
	} else {
		content, err = env.tar.Read(path)
	}
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(content)
	return err
}

func readZipByIndex(env *commandEnv, path string) ([]byte, error) {
	index := env.c.Int("index")
	if !env.c.IsSet("index") {
		return env.zip.Read(path)
	}

	entries, err := env.zip.List()
	if err != nil {
		return nil, err
	}
	matchIdx := 0
	for _, e := range entries {
		name := e.LFHFilename
		if name == "" {
			name = e.CDHFilename
		}
		if name != path {
			continue
		}
		if matchIdx == index {
			z := env.zip
			return z.ReadByEntry(e)
		}
		matchIdx++
	}
	return nil, archerr.New(archerr.EntryNotFound, "read", path, nil)
}
