package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"sigs.k8s.io/release-utils/version"
)

// runVersion prints build version info, grounded on go-dictzip's
// cmd/dictzip/app.go + license.go, which wire sigs.k8s.io/release-utils/version
// for the same purpose.
func runVersion(c *cli.Context) error {
	info := version.GetVersionInfo()
	fmt.Fprintf(c.App.Writer, "%s %s\n%s\n", c.App.Name, info.GitVersion, info.String())
	return nil
}
