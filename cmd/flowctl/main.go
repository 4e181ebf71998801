package main

import (
	"os"

	"event-driven-flow/cmd/flowctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
