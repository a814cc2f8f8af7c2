package main

import (
	"os"
)

// Version will be set at build time via -ldflags
var Version = "dev"

func main() {
	os.Exit(execute(defaultApp(), os.Args[1:]))
}
