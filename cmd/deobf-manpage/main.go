package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/deobf/cmd/deobf"
	"github.com/arthur-debert/deobf/internal/version"
)

func main() {
	rootCmd := deobf.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "DEOBF",
		Section: "1",
		Source:  "deobf " + version.Version,
		Manual:  "deobf manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
