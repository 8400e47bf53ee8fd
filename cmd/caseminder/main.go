package main

import (
	"os"

	"github.com/solatis/caseminder/cmd/caseminder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
