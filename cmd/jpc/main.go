package main

import (
	"os"

	"github.com/jean-pierre/jpc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
