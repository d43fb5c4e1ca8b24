// Package main is the single-binary entrypoint for the honor score engine.
package main

import "github.com/honorhabits/honor/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
