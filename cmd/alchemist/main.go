// Command archive-alchemist builds and inspects ZIP/TAR archives with
// exact control over permission bits, link types, offsets, and extra
// fields for security testing.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "archive-alchemist: %v\n", err)
		os.Exit(1)
	}
}
