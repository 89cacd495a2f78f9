package main

import (
	"os"

	"github.com/lineal-dev/lineal/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
