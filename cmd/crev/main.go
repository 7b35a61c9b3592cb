package main

import (
	"os"

	"github.com/dshills/crev/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
