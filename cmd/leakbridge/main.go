package main

import (
	"os"

	"github.com/bryanwahyu/leakbridge/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
