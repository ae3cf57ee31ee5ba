package main

import (
	"os"

	"clam-browse/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
