package main

import (
	"os"

	"github.com/eventmgmt/eventctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
