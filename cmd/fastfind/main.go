// Package main provides the entry point for the fastfind CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/fastfind/cmd/fastfind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
