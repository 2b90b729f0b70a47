package main

import (
	"os"

	"github.com/ril-lang/ril/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
