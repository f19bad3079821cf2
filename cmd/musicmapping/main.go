package main

import (
	"os"

	"github.com/benewagner/musicmapping/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
