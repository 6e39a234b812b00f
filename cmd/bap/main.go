package main

import "bap/internal/cli"

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
