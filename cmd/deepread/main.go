package main

import (
	"os"

	"github.com/asengupta/deepread/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
