package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/avlidienbrunn/archive-alchemist-go/internal/applog"
)

// newApp builds the urfave/cli/v2 app implementing the command surface
// "<archive> [-v] [-t TYPE] [-fo] <subcommand> ...". Grounded on
// go-dictzip/cmd/dictzip's app.go structure (single App, flags checked by
// hand in Action rather than deeply nested subcommands), adapted because
// this tool's archive path is a leading positional rather than a trailing
// one, which urfave/cli's native Command-matching doesn't support
// directly — every flag is declared on the top-level App and dispatch
// happens by hand against the positional subcommand name.
func newApp() *cli.App {
	return &cli.App{
		Name:  "archive-alchemist",
		Usage: "construct and inspect ZIP/TAR archives for security testing",
		Description: strings.Join([]string{
			"archive-alchemist builds and inspects ZIP and TAR archives with",
			"exact control over permission bits, link types, offsets, and",
			"extra fields — including malformed and adversarial layouts",
			"mainstream archive libraries refuse to produce or silently",
			"correct.",
		}, "\n"),
		ArgsUsage:       "<archive> <subcommand> [args...]",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "v", Usage: "verbose logging"},
			&cli.StringFlag{Name: "t", Usage: "force archive type: zip|tar|tar.gz|tar.xz|tar.bz2"},
			&cli.BoolFlag{Name: "fo", Usage: "include orphaned/ambiguous ZIP entries in listings"},
			&cli.StringFlag{Name: "content", Usage: "literal content for the entry"},
			&cli.StringFlag{Name: "content-file", Usage: "path to read content from"},
			&cli.StringFlag{Name: "content-directory", Usage: "directory to walk and add recursively"},
			&cli.StringFlag{Name: "symlink", Usage: "convert entry to a symlink with this target"},
			&cli.StringFlag{Name: "hardlink", Usage: "convert entry to a hardlink with this target"},
			&cli.StringFlag{Name: "mode", Usage: "octal permission mode, e.g. 0755"},
			&cli.Int64Flag{Name: "uid"},
			&cli.Int64Flag{Name: "gid"},
			&cli.Int64Flag{Name: "mtime", Usage: "modification time as a Unix epoch"},
			&cli.BoolFlag{Name: "setuid"},
			&cli.BoolFlag{Name: "setgid"},
			&cli.BoolFlag{Name: "sticky"},
			&cli.StringFlag{Name: "unicodepath", Usage: "ZIP Unicode Path (0x7075) override (zip only)"},
			&cli.IntFlag{Name: "recursive", Value: 1, Usage: "0 or 1; for remove"},
			&cli.IntFlag{Name: "long", Usage: "listing detail level: 0, 1, or 2"},
			&cli.BoolFlag{Name: "longlong", Usage: "equivalent to --long 2"},
			&cli.IntFlag{Name: "index", Usage: "disambiguate by position when names collide (read)"},
			&cli.StringFlag{Name: "path", Usage: "extract only this entry (extract)"},
			&cli.StringFlag{Name: "o", Usage: "output directory (extract)", Value: "."},
			&cli.BoolFlag{Name: "vulnerable", Usage: "reproduce unsafe extraction behavior"},
			&cli.BoolFlag{Name: "normalize-permissions", Usage: "ignore stored permission bits on extract"},
			&cli.BoolFlag{Name: "version", Usage: "print version and exit"},
		},
		Action: dispatch,
	}
}

// dispatch implements the tool's argument shape by hand: Args().Get(0)
// is the archive path, Args().Get(1) the subcommand, and everything after
// that is subcommand-specific (usually a single entry path).
func dispatch(c *cli.Context) error {
	applog.SetVerbose(c.Bool("v"))

	if c.Bool("version") {
		return runVersion(c)
	}

	if c.NArg() < 2 {
		return cli.Exit(fmt.Sprintf("usage: %s <archive> <subcommand> [args...]", filepath.Base(os.Args[0])), 1)
	}

	archivePath := c.Args().Get(0)
	subcommand := c.Args().Get(1)
	rest := c.Args().Slice()[2:]

	env, err := newCommandEnv(c, archivePath)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	switch subcommand {
	case "add":
		return runAdd(env, rest)
	case "replace":
		return runReplace(env, rest)
	case "append":
		return runAppend(env, rest)
	case "modify":
		return runModify(env, rest)
	case "remove", "rm":
		return runRemove(env, rest)
	case "list", "ls":
		return runList(env, rest)
	case "read", "cat":
		return runRead(env, rest)
	case "extract":
		return runExtract(env, rest)
	case "polyglot":
		return runPolyglot(env, rest)
	default:
		return cli.Exit(fmt.Sprintf("unknown subcommand %q", subcommand), 1)
	}
}

// parseOctalMode parses the --mode flag's octal string, returning nil
// (meaning "caller did not specify a mode") when empty.
func parseOctalMode(s string) (*uint32, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid --mode %q: %w", s, err)
	}
	m := uint32(v)
	return &m, nil
}
