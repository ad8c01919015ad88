package main

import (
	"os"

	"github.com/aloks98/securevault/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
