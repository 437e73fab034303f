package main

import (
	"os"

	"github.com/mizupe/appliedml/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
