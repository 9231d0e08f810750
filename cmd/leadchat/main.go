package main

import (
	"os"

	"github.com/rmarques/leadchat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
