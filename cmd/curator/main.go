package main

import (
	"os"

	"github.com/hashicorp-forge/curator/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
