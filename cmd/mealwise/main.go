package main

import (
	"os"

	"github.com/mealwise/mealwise/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
