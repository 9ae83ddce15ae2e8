package main

import (
	"os"

	"snap_behat/presentation/cli"
)

func main() {
	os.Exit(cli.Execute())
}
