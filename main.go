package main

import (
	"os"

	"github.com/atelier-edu/reparto/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
